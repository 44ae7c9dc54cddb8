package handler

import (
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime/types"
)

// ptr returns a pointer to v, for the optional fields of response types.
func ptr[T any](v T) *T {
	return &v
}

// uuidToString renders an API UUID in canonical form.
func uuidToString(u types.UUID) string {
	return uuid.UUID(u).String()
}

// stringToUUID parses s as a UUID, returning nil when it does not parse.
func stringToUUID(s string) *types.UUID {
	u, err := uuid.Parse(s)
	if err != nil {
		return nil
	}
	id := types.UUID(u)
	return &id
}
