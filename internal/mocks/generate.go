// Package mocks provides mock implementations for testing the mealhow backend.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for
// the publisher port. The repository and auth ports use the hand-written
// doubles in doubles.go, which are lightweight and suitable for unit tests
// without codegen.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	publisher := mocks.NewMockPublisher(ctrl)
//	publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)
package mocks

// Generate mock for the Publisher interface from internal/core.
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=publisher_mock.go github.com/mealhow/mealhow-api/internal/core Publisher
