package domain

// Message keys resolved by the i18n translator.
const (
	MsgNotRegistered  = "error_not_registered"
	MsgErrorGeneric   = "error_generic"
	MsgUploadSuccess  = "upload_success"
	MsgUploadFailed   = "upload_failed"
	MsgRateLimited    = "upload_rate_limited"
	MsgUploadNotImage = "upload_not_image"
	MsgUploadTooLarge = "upload_too_large"
)

// ProfileMessages maps profile-load failures to what the dashboard shows.
// All three kinds collapse to one message; users are not told which one hit.
var ProfileMessages = map[ErrorKind]string{
	KindMissingCredential: MsgNotRegistered,
	KindUnauthenticated:   MsgNotRegistered,
	KindServiceError:      MsgNotRegistered,
}

// FAQMessages is empty: FAQ load failures are silent and the list stays empty.
var FAQMessages = map[ErrorKind]string{}

// UploadMessages maps upload failures that carry no server text.
var UploadMessages = map[ErrorKind]string{
	KindValidation:        MsgUploadFailed,
	KindServiceError:      MsgUploadFailed,
	KindUnauthenticated:   MsgUploadFailed,
	KindMissingCredential: MsgUploadFailed,
}

// MessageFor looks kind up in table, falling back to the service-error entry.
func MessageFor(table map[ErrorKind]string, kind ErrorKind) string {
	if m, ok := table[kind]; ok {
		return m
	}
	return table[KindServiceError]
}
