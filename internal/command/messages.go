package command

import (
	appErrors "github.com/noah-isme/tutorial-records/pkg/errors"
)

var messages = map[string]string{
	appErrors.ErrDuplicatePerson.Code:        "This person already exists in the address book",
	appErrors.ErrDuplicateStudent.Code:       "This student already exists in the tutorial",
	appErrors.ErrDuplicateAssessment.Code:    "This assessment already exists",
	appErrors.ErrDuplicateStudentResult.Code: "This student already has a result for the assessment",
	appErrors.ErrDuplicateTutorial.Code:      "This tutorial already exists",
	appErrors.ErrPersonNotFound.Code:         "The person does not exist in the address book",
	appErrors.ErrStudentNotFound.Code:        "The student does not exist",
	appErrors.ErrTutorialNotFound.Code:       "The tutorial does not exist",
	appErrors.ErrAssessmentNotFound.Code:     "The assessment does not exist",
	appErrors.ErrInvalidWeekOrStudent.Code:   "The week or student is invalid for this tutorial",
	appErrors.ErrScoreOutOfRange.Code:        "The score is out of range for this assessment",
	appErrors.ErrInvalidIndex.Code:           "The index provided is invalid",
	appErrors.ErrReentrantMutation.Code:      "Records cannot change while they are being displayed",
	appErrors.ErrInternal.Code:               "Something went wrong",
}

// defaults maps codes to the predefined message, to spot overridden ones.
var defaults = map[string]string{
	appErrors.ErrDuplicatePerson.Code:        appErrors.ErrDuplicatePerson.Message,
	appErrors.ErrDuplicateStudent.Code:       appErrors.ErrDuplicateStudent.Message,
	appErrors.ErrDuplicateAssessment.Code:    appErrors.ErrDuplicateAssessment.Message,
	appErrors.ErrDuplicateStudentResult.Code: appErrors.ErrDuplicateStudentResult.Message,
	appErrors.ErrDuplicateTutorial.Code:      appErrors.ErrDuplicateTutorial.Message,
	appErrors.ErrPersonNotFound.Code:         appErrors.ErrPersonNotFound.Message,
	appErrors.ErrStudentNotFound.Code:        appErrors.ErrStudentNotFound.Message,
	appErrors.ErrTutorialNotFound.Code:       appErrors.ErrTutorialNotFound.Message,
	appErrors.ErrAssessmentNotFound.Code:     appErrors.ErrAssessmentNotFound.Message,
	appErrors.ErrInvalidWeekOrStudent.Code:   appErrors.ErrInvalidWeekOrStudent.Message,
	appErrors.ErrScoreOutOfRange.Code:        appErrors.ErrScoreOutOfRange.Message,
	appErrors.ErrInvalidIndex.Code:           appErrors.ErrInvalidIndex.Message,
	appErrors.ErrReentrantMutation.Code:      appErrors.ErrReentrantMutation.Message,
	appErrors.ErrInternal.Code:               appErrors.ErrInternal.Message,
}

// Message turns an error into the line shown to the user. Validation errors
// carry their own text; other codes get a fixed sentence, followed by the
// detail when the error overrides the default message.
func Message(err error) string {
	if err == nil {
		return ""
	}
	e := appErrors.FromError(err)
	if e.Code == appErrors.ErrValidation.Code {
		return "Invalid command: " + e.Message
	}
	text, ok := messages[e.Code]
	if !ok {
		return e.Error()
	}
	if e.Message != "" && e.Message != defaults[e.Code] {
		text += ": " + e.Message
	}
	return text
}
