// Package domain contains the core business entities of the task distribution
// service: users and their roles, upload batches and the tasks produced from
// them. It is independent of any storage or delivery mechanism.
package domain
