// Package mocks provides centralized mock implementations for testing.
//
// Each mock exposes one function field per interface method. When a field is
// nil the mock falls back to a small in-memory implementation, so most tests
// only override the calls they care about:
//
//	users := mocks.NewMockUserStore()
//	users.GetByIDFn = func(ctx context.Context, id uuid.UUID) (*domain.User, error) {
//	    return nil, store.ErrUserNotFound
//	}
//
// The in-memory user store stands in for bcrypt by storing "hashed-" plus the
// plaintext; MockPasswordVerifier's default comparison understands that form.
package mocks
