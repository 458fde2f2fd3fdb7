package utils

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/bsm/redislock"
	"github.com/go-playground/validator/v10"
	"github.com/odouglasrocha/apiplano/config"
)

var ErrUploadInProgress = errors.New("another spreadsheet upload is in progress")

func IsValidEmail(email string) bool {
	pattern := `^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`
	regex := regexp.MustCompile(pattern)
	return regex.MatchString(email)
}

func ProcessValidationErrors(err error) map[string]string {
	validationErrors := err.(validator.ValidationErrors)

	errorResponse := make(map[string]string)
	for _, ve := range validationErrors {
		errorResponse[ve.Field()] = ve.Tag()
	}

	return errorResponse
}

// AcquireUploadLock serializes spreadsheet uploads across instances. The
// lock is best-effort when Redis is not configured (single instance):
// callers get a no-op release. With Redis up, a held lock rejects the
// second upload with ErrUploadInProgress instead of letting two full
// plan replacements interleave.
func AcquireUploadLock(ctx context.Context, kind string) (func(), error) {
	locker := config.GetRedisLock()
	if locker == nil {
		return func() {}, nil
	}

	lock, err := locker.Obtain(ctx, "upload:"+kind, 60*time.Second, nil)
	if err == redislock.ErrNotObtained {
		return nil, ErrUploadInProgress
	} else if err != nil {
		logger := config.GetLogger()
		config.LogError(logger, "utils", "AcquireUploadLock", "Error obtaining upload lock", kind, err)
		return nil, err
	}

	return func() {
		_ = lock.Release(context.Background())
	}, nil
}
