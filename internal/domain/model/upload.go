package model

// ReceiptFile is an image the user picked as proof of an out-of-band payment.
type ReceiptFile struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"`
}

func (f *ReceiptFile) Size() int {
	if f == nil {
		return 0
	}
	return len(f.Data)
}

// UploadResult is the user-facing outcome of a receipt submission.
// Message is server text shown verbatim; when empty, MessageKey is
// resolved by the translator.
type UploadResult struct {
	OK         bool   `json:"ok"`
	Message    string `json:"message,omitempty"`
	MessageKey string `json:"message_key,omitempty"`
}

type UploadStatus string

const (
	UploadIdle        UploadStatus = "idle"
	UploadPickerShown UploadStatus = "picker_shown"
	UploadFileChosen  UploadStatus = "file_chosen"
	UploadSubmitting  UploadStatus = "submitting"
	UploadDone        UploadStatus = "done"
)

// UploadState is a tagged variant. File is set for FileChosen and
// Submitting, Result for Done. A failed Done keeps its File so the same
// receipt can be sent again. Use the constructors.
type UploadState struct {
	Status UploadStatus  `json:"status"`
	File   *ReceiptFile  `json:"file,omitempty"`
	Result *UploadResult `json:"result,omitempty"`
}

func UploadStateIdle() UploadState        { return UploadState{Status: UploadIdle} }
func UploadStatePickerShown() UploadState { return UploadState{Status: UploadPickerShown} }

func UploadStateFileChosen(f *ReceiptFile) UploadState {
	return UploadState{Status: UploadFileChosen, File: f}
}

func UploadStateSubmitting(f *ReceiptFile) UploadState {
	return UploadState{Status: UploadSubmitting, File: f}
}

func UploadStateDone(r UploadResult) UploadState {
	return UploadState{Status: UploadDone, Result: &r}
}

// UploadStateFailed is Done with a failure result, keeping f for a retry.
func UploadStateFailed(f *ReceiptFile, r UploadResult) UploadState {
	r.OK = false
	return UploadState{Status: UploadDone, File: f, Result: &r}
}

// CanSubmit is true with a chosen file and nothing in flight, including
// after a failed attempt.
func (u UploadState) CanSubmit() bool {
	if u.File == nil {
		return false
	}
	switch u.Status {
	case UploadFileChosen:
		return true
	case UploadDone:
		return u.Result != nil && !u.Result.OK
	}
	return false
}

// PickerVisible reports whether the file input should be rendered.
func (u UploadState) PickerVisible() bool {
	switch u.Status {
	case UploadPickerShown, UploadFileChosen, UploadSubmitting, UploadDone:
		return true
	}
	return false
}
