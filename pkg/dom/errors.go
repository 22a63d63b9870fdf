package dom

// Error is a DOM exception. Two Errors match with errors.Is when their
// names are equal, so callers compare against the sentinel values below.
type Error struct {
	Name    string
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return "dom: " + e.Name
	}
	return "dom: " + e.Name + ": " + e.Message
}

// Is reports whether target is a DOM Error with the same name.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Name == e.Name
}

// Sentinel errors for errors.Is comparisons.
var (
	ErrHierarchyRequest = &Error{Name: "HierarchyRequestError"}
	ErrWrongDocument    = &Error{Name: "WrongDocumentError"}
	ErrInvalidCharacter = &Error{Name: "InvalidCharacterError"}
	ErrNotFound         = &Error{Name: "NotFoundError"}
	ErrNotSupported     = &Error{Name: "NotSupportedError"}
	ErrInvalidState     = &Error{Name: "InvalidStateError"}
	ErrSyntax           = &Error{Name: "SyntaxError"}
	ErrTypeError        = &Error{Name: "TypeError"}
)

func newError(sentinel *Error, msg string) *Error {
	return &Error{Name: sentinel.Name, Message: msg}
}
