package sentinel

// Compile-time check that Error implements the error interface.
var _ error = Error("")

// Error is a string-backed error type whose values can be declared const.
// A const sentinel cannot be reassigned by a consumer, unlike a var created
// with errors.New.
//
// Because Error is a comparable type, the plain == comparison performed by
// errors.Is matches sentinels correctly through wrapped error chains.
type Error string

// Error implements the error interface.
func (e Error) Error() string {
	return string(e)
}
