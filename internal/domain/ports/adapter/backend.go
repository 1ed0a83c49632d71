package adapter

import (
	"context"

	"parallel-muhit-webapp/internal/domain/model"
)

// BackendClient is the port for the remote subscription service.
//
// Calls that need an API key return domain.ErrMissingCredential without
// touching the network when apiKey is empty. HTTP 401 maps to
// domain.ErrUnauthenticated, any other failure wraps domain.ErrServiceError.
type BackendClient interface {
	GetProfile(ctx context.Context, apiKey string) (*model.UserProfile, error)
	GetFAQs(ctx context.Context) ([]model.FAQ, error)
	GetTransactionHistory(ctx context.Context, apiKey string, page int) (*model.TransactionPage, error)
	// UploadPaymentReceipt returns a successful result on HTTP 201 and a
	// *domain.ValidationError on HTTP 400.
	UploadPaymentReceipt(ctx context.Context, apiKey string, file *model.ReceiptFile) (*model.UploadResult, error)
}
