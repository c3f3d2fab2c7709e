package validation

import (
	"github.com/Oudwins/zog"
)

// GetResultsContract is the part of a get-results command whose presence is enforced
type GetResultsContract struct {
	ErrorHandlerID string
	Platform       string
}

// GetResultsSchema validates the arguments of a get-results command
var GetResultsSchema = zog.Struct(zog.Shape{
	"ErrorHandlerID": zog.String().Required(zog.Message("errorHandlerId is required")).Min(1, zog.Message("errorHandlerId is required")),
	"Platform":       zog.String().Required(zog.Message("taarParams.platform is required")).Min(1, zog.Message("taarParams.platform is required")),
})
