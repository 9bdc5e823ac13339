package apiclient

// Endpoint paths, relative to the API base URL
const (
	EndpointRegister       = "/auth/register/"
	EndpointLogin          = "/auth/login/"
	EndpointLogout         = "/auth/logout/"
	EndpointProfile        = "/auth/profile/"
	EndpointTokenRefresh   = "/auth/token/refresh/"
	EndpointTokenVerify    = "/auth/token/verify/"
	EndpointSendInvitation = "/auth/send-invitation/"
)
