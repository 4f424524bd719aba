package mongodb

import (
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"storefront/internal/repositories/interfaces"
)

func wrap(err error, action string) error {
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("failed to %s: %w", action, interfaces.ErrDuplicateKey)
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}
