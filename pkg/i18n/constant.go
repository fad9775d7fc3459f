package i18n

var ALLOW_LANG = map[string]bool{
	"en":    true,
	"zh-CN": true,
}

const DEFAULT_LANG = "en"

const (
	ERROR_INTERNAL          = "error.internal"
	ERROR_NOT_FOUND         = "error.notfound"
	ERROR_INVALIDARGUMENT   = "error.invalidargument"
	ERROR_PERMISSION_DENIED = "error.permission.denied"
	ERROR_UNAUTHORIZED      = "error.unauthorized"
	ERROR_EXIST             = "error.exist"
	ERROR_FORBIDDEN         = "error.forbidden"
	ERROR_TOO_MANY_REQUESTS = "error.tooManyRequests"

	ERROR_INVALID_TOKEN           = "error.invalid.token"
	ERROR_LOGIN_ACCOUNT_INCORRECT = "error.login.account.incorrect"
	ERROR_EMAIL_ALREADY_REGISTED  = "error.email_has_already_registed"

	ERROR_JOURNAL_DATE_EXIST  = "error.journal.date.exist"
	ERROR_JOURNAL_EMPTY       = "error.journal.empty"
	ERROR_IMAGE_READ_FAIL     = "error.image.read_file"
	ERROR_AUDIO_MISSING       = "error.audio.missing"
	ERROR_AUDIO_TOO_LARGE     = "error.audio.too_large"
	ERROR_AUDIO_UNSUPPORTED   = "error.audio.unsupported"
	ERROR_RECORDING_IN_USE    = "error.recording.in_use"
	ERROR_RECORDING_NOT_FOUND = "error.recording.not_found"
	ERROR_AI_UPSTREAM         = "error.ai.upstream"
	ERROR_AI_UNAVAILABLE      = "error.ai.unavailable"

	MESSAGE_JOURNAL_SAVED = "message.journal.saved"
)
