package model

// PageState is the single router value of a session.
type PageState string

const (
	PageDashboard      PageState = "dashboard"
	PagePaymentHistory PageState = "payment-history"
	PageFAQ            PageState = "faq"
)
