package evaluator

import (
	"fmt"
	"strings"
)

// RuntimeError is a single fatal error raised during execution. Execution
// stops on the first one; there is no try/catch in Toylang.
type RuntimeError struct {
	Message string
}

func (e *RuntimeError) Error() string { return e.Message }

func newError(format string, args ...interface{}) *RuntimeError {
	return &RuntimeError{Message: fmt.Sprintf(format, args...)}
}

func ErrInternal(reason string) error {
	return newError("Internal exception: %s", reason)
}

func ErrUnimplemented(what string) error {
	return newError("Unimplemented: %s", what)
}

func ErrUndefinedVariable(name string) error {
	return newError("Variable '%s' has not been defined yet", name)
}

func ErrCannotRedeclare(name string) error {
	return newError("Cannot redeclare %s", name)
}

func ErrWrongType(expected, found string) error {
	return newError("Wrong type: expected %s, found %s", expected, found)
}

func ErrUnsupportedBinaryOp(a, b string) error {
	return newError("Unsupported binary operation between %s and %s", a, b)
}

func ErrUnsupportedPrefixOp(t string) error {
	return newError("Unsupported prefix operation on %s", t)
}

func ErrUnsupportedOperator(op string) error {
	return newError("Unsupported operator %q", op)
}

func ErrNonIntegerIndex() error {
	return newError("Array index must be an integer")
}

func ErrNegativeArrayIndex() error {
	return newError("Array index must not be negative")
}

func ErrIndexOutOfBounds(i int) error {
	return newError("Index %d is out of bounds", i)
}

func ErrWrongIndexAccessTarget(name string) error {
	return newError("Cannot index into a value of type %s", name)
}

func ErrExpectedIdentifier() error {
	return newError("Expected an identifier or index expression on the left-hand side of '='")
}

func ErrFunctionParameterWrongFormat() error {
	return newError("Function parameter must be an identifier, optionally with a default value")
}

func ErrDuplicateParameter(name string) error {
	return newError("Duplicate parameter %q", name)
}

func ErrParamsAndArgsDontMatch(expected, actual int) error {
	return newError("Expected at most %d arguments, got %d", expected, actual)
}

func ErrUnsetParameters(names []string) error {
	return newError("Missing required arguments: %s", strings.Join(names, ", "))
}

func ErrMisplacedFlowOperator(name string) error {
	return newError("%s used outside of a loop or function body", name)
}

func ErrZeroStep() error {
	return newError("for loop step must not be zero")
}

func ErrNegativeStep() error {
	return newError("for loop step must not be negative when counting up")
}

func ErrPositiveStep() error {
	return newError("for loop step must not be positive when counting down")
}

func ErrFileImportFailed(path string) error {
	return newError("Could not open module file %q", path)
}

func ErrImportParserException(path string, errs []string) error {
	return newError("Errors while parsing imported module %q:\n%s", path, strings.Join(errs, "\n"))
}

func ErrImportEvalException(path string, inner error) error {
	return newError("Error while evaluating imported module %q: %s", path, inner.Error())
}

func ErrErrorNode() error {
	return newError("Cannot execute error node")
}

func ErrWrongCallTarget(name string) error {
	return newError("Cannot call a value of type %s", name)
}
