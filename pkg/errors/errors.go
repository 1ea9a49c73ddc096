package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeNetwork represents fetch or transport failures
	ErrorTypeNetwork ErrorType = "network"
	// ErrorTypeRateLimit represents rate limiting by the listing source
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypeParsing represents malformed listing cards
	ErrorTypeParsing ErrorType = "parsing"
	// ErrorTypeNotify represents notification delivery failures
	ErrorTypeNotify ErrorType = "notify"
	// ErrorTypePersistence represents seen-store read/write failures
	ErrorTypePersistence ErrorType = "persistence"
	// ErrorTypePublisher represents stream publishing failures
	ErrorTypePublisher ErrorType = "publisher"
	// ErrorTypeCache represents cache-related errors
	ErrorTypeCache ErrorType = "cache"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
)

// RadarError is the error type shared by every component of the pipeline
type RadarError struct {
	Type      ErrorType
	Component string
	Message   string
	Err       error
	Time      time.Time
}

// Error implements the error interface
func (e *RadarError) Error() string {
	if e.Component == "" {
		if e.Err != nil {
			return fmt.Sprintf("[%s] %s - %v", e.Type, e.Message, e.Err)
		}
		return fmt.Sprintf("[%s] %s", e.Type, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Component, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Component, e.Message)
}

// Unwrap returns the underlying error
func (e *RadarError) Unwrap() error {
	return e.Err
}

// IsFatal reports whether the error should terminate the process.
// Only missing or invalid configuration is fatal.
func (e *RadarError) IsFatal() bool {
	return e.Type == ErrorTypeConfiguration
}

// New creates a new RadarError
func New(errType ErrorType, component, message string, err error) *RadarError {
	return &RadarError{
		Type:      errType,
		Component: component,
		Message:   message,
		Err:       err,
		Time:      time.Now(),
	}
}

// Is reports whether any error in err's chain is a RadarError of the given type
func Is(err error, errType ErrorType) bool {
	var re *RadarError
	if stderrors.As(err, &re) {
		return re.Type == errType
	}
	return false
}

// NewNetwork creates a new network error
func NewNetwork(component, message string, err error) *RadarError {
	return New(ErrorTypeNetwork, component, message, err)
}

// NewRateLimit creates a new rate limit error
func NewRateLimit(component string, retryAfter string) *RadarError {
	message := "rate limited"
	if retryAfter != "" {
		message = fmt.Sprintf("rate limited; retry after %s", retryAfter)
	}
	return New(ErrorTypeRateLimit, component, message, nil)
}

// NewParsing creates a new parsing error
func NewParsing(component, message string, err error) *RadarError {
	return New(ErrorTypeParsing, component, message, err)
}

// NewNotify creates a new notification error
func NewNotify(component, message string, err error) *RadarError {
	return New(ErrorTypeNotify, component, message, err)
}

// NewPersistence creates a new persistence error
func NewPersistence(component, message string, err error) *RadarError {
	return New(ErrorTypePersistence, component, message, err)
}

// NewPublisher creates a new publisher error
func NewPublisher(component, message string, err error) *RadarError {
	return New(ErrorTypePublisher, component, message, err)
}

// NewCache creates a new cache error
func NewCache(component, message string, err error) *RadarError {
	return New(ErrorTypeCache, component, message, err)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *RadarError {
	return New(ErrorTypeConfiguration, "", message, err)
}
