package service

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	apperrors "enrollwall/internal/errors"
)

const entityCacheTTL = 5 * time.Minute

func userCacheKey(id uint) string {
	return fmt.Sprintf("user:%d", id)
}

func courseCacheKey(id uint) string {
	return fmt.Sprintf("course:%d", id)
}

// translateWriteErr turns a unique-index violation into ErrDuplicateKey.
func translateWriteErr(err error, duplicateMsg string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperrors.Domain(apperrors.ErrDuplicateKey, duplicateMsg)
	}
	return err
}

// translateReadErr turns a missing record into ErrNotFound with msg.
func translateReadErr(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound(msg)
	}
	return err
}
