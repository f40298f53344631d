package errors

// ErrorCode represents a unique error identifier
type ErrorCode int

// Error code ranges allocation:
// 10000-10999: System & Common errors
// 11000-11999: Invocation & configuration errors
// 12000-12999: Judge process errors
// 13000-13999: Submission errors
// 14000-14999: Result errors

const (
	// ========== System & Common Errors (10000-10999) ==========

	// Success
	Success ErrorCode = 10000

	// Generic errors (10000-10099)
	InternalError ErrorCode = 10001

	// ========== Invocation & Configuration Errors (11000-11999) ==========

	// Arguments (11000-11099)
	InvalidArguments   ErrorCode = 11000
	MissingSourceFile  ErrorCode = 11001
	OddArgumentCount   ErrorCode = 11002
	InboxNotFound      ErrorCode = 11003
	SettingsLoadFailed ErrorCode = 11004

	// Configuration store (11100-11199)
	ConfigSetupFailure ErrorCode = 11100
	ConfigReadFailed   ErrorCode = 11101
	ConfigWriteFailed  ErrorCode = 11102
	ConfigResetFailed  ErrorCode = 11103

	// ========== Judge Process Errors (12000-12999) ==========

	ProcessNotFound  ErrorCode = 12000
	ProcessProbeFail ErrorCode = 12001

	// ========== Submission Errors (13000-13999) ==========

	CopyFailure       ErrorCode = 13000
	SourceUnreadable  ErrorCode = 13001
	DestinationExists ErrorCode = 13002
	InboxUnwritable   ErrorCode = 13003

	// ========== Result Errors (14000-14999) ==========

	Timeout     ErrorCode = 14000
	ReadFailure ErrorCode = 14100
)

// errorMessages maps error codes to their default English messages
var errorMessages = map[ErrorCode]string{
	Success:       "Success",
	InternalError: "Internal error",

	InvalidArguments:   "Invalid arguments",
	MissingSourceFile:  "Source file argument is required",
	OddArgumentCount:   "Arguments must be given as flag/value pairs",
	InboxNotFound:      "Inbox directory does not exist",
	SettingsLoadFailed: "Failed to load settings",

	ConfigSetupFailure: "First time setup failed",
	ConfigReadFailed:   "Failed to read configuration",
	ConfigWriteFailed:  "Failed to write configuration",
	ConfigResetFailed:  "Failed to reset configuration",

	ProcessNotFound:  "Judge process is not running",
	ProcessProbeFail: "Failed to enumerate processes",

	CopyFailure:       "Failed to copy submission",
	SourceUnreadable:  "Source file is not readable",
	DestinationExists: "Submission file already exists in inbox",
	InboxUnwritable:   "Inbox directory is not writable",

	Timeout:     "Idleness limit exceeded",
	ReadFailure: "Failed to read result",
}

// Message returns the default message for the error code
func (c ErrorCode) Message() string {
	if msg, ok := errorMessages[c]; ok {
		return msg
	}
	return "Unknown error"
}

// Exit codes returned by the command line tool.
const (
	ExitOK                 = 0
	ExitInternal           = 1
	ExitInvalidArguments   = 2
	ExitProcessNotFound    = 3
	ExitConfigSetupFailure = 4
	ExitCopyFailure        = 5
	ExitTimeout            = 6
	ExitReadFailure        = 7
)

// ExitCode returns the process exit status for the error code
func (c ErrorCode) ExitCode() int {
	switch {
	case c == Success:
		return ExitOK
	case c >= 11000 && c < 11100: // Argument errors
		return ExitInvalidArguments
	case c >= 11100 && c < 11200: // Configuration store errors
		return ExitConfigSetupFailure
	case c >= 12000 && c < 13000:
		return ExitProcessNotFound
	case c >= 13000 && c < 14000:
		return ExitCopyFailure
	case c == Timeout:
		return ExitTimeout
	case c == ReadFailure:
		return ExitReadFailure
	default:
		return ExitInternal
	}
}

// Kind returns the terminal condition the code belongs to.
// Every code in a range collapses onto the range's head code.
func (c ErrorCode) Kind() ErrorCode {
	switch {
	case c >= 11000 && c < 11100:
		return InvalidArguments
	case c >= 11100 && c < 11200:
		return ConfigSetupFailure
	case c >= 12000 && c < 13000:
		return ProcessNotFound
	case c >= 13000 && c < 14000:
		return CopyFailure
	case c >= 14000 && c < 14100:
		return Timeout
	case c >= 14100 && c < 14200:
		return ReadFailure
	case c == Success:
		return Success
	default:
		return InternalError
	}
}
