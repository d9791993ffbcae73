package errors

import (
	"net"
	"strconv"
	"strings"
	"unicode"
)

// ValidateIndex validates a 1-based example index.
func ValidateIndex(index int) error {
	if index < 1 {
		return New(ErrCodeInvalidInput, "example index must be at least 1, got %d", index)
	}
	return nil
}

// ValidateWorkers validates a worker count for batch analysis.
func ValidateWorkers(n int) error {
	const maxWorkers = 256
	if n < 1 || n > maxWorkers {
		return New(ErrCodeInvalidConfig, "workers must be between 1 and %d, got %d", maxWorkers, n)
	}
	return nil
}

// ValidatePrecision validates the number of decimal places used when a
// ratio is displayed rounded.
func ValidatePrecision(p int) error {
	if p < 0 || p > 12 {
		return New(ErrCodeInvalidInput, "precision must be between 0 and 12, got %d", p)
	}
	return nil
}

// ValidatePath validates an input or output file path.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}
	return nil
}

// ValidateRedisAddr validates a host:port address for the Redis cache.
func ValidateRedisAddr(addr string) error {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return Wrap(ErrCodeInvalidConfig, err, "invalid redis address %q", addr)
	}
	if host == "" {
		return New(ErrCodeInvalidConfig, "redis address %q has no host", addr)
	}
	if p, err := strconv.Atoi(port); err != nil || p < 1 || p > 65535 {
		return New(ErrCodeInvalidConfig, "redis address %q has invalid port", addr)
	}
	return nil
}

// ValidateMongoURI validates a MongoDB connection string.
// It only checks the scheme; the driver parses the rest.
func ValidateMongoURI(uri string) error {
	if uri == "" {
		return New(ErrCodeInvalidConfig, "mongo URI cannot be empty")
	}
	if !strings.HasPrefix(uri, "mongodb://") && !strings.HasPrefix(uri, "mongodb+srv://") {
		return New(ErrCodeInvalidConfig, "mongo URI must use mongodb or mongodb+srv scheme")
	}
	return nil
}
