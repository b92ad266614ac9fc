package autherr

import (
	"context"
	"errors"
	"net"

	"github.com/dmitrijs2005/authflow/internal/client/backend"
	"github.com/go-playground/validator/v10"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// UnexpectedMessage is shown for failures that did not come from the
// provider at all.
const UnexpectedMessage = "An unexpected error occurred."

var providerKinds = map[backend.Code]Kind{
	backend.CodeInvalidEmail:                         InvalidEmail,
	backend.CodeMissingEmail:                         MissingEmail,
	backend.CodeMissingPassword:                      MissingPassword,
	backend.CodeWeakPassword:                         WeakPassword,
	backend.CodeWrongPassword:                        WrongPassword,
	backend.CodeUnverifiedEmail:                      UnverifiedEmail,
	backend.CodeUserNotFound:                         UserNotFound,
	backend.CodeEmailAlreadyInUse:                    EmailAlreadyInUse,
	backend.CodeUserDisabled:                         UserDisabled,
	backend.CodeOperationNotAllowed:                  OperationNotAllowed,
	backend.CodeInvalidCredential:                    CredentialInvalid,
	backend.CodeCredentialAlreadyInUse:               CredentialAlreadyInUse,
	backend.CodeAccountExistsWithDifferentCredential: AccountExistsWithDifferentCredential,
	backend.CodeNetworkRequestFailed:                 NetworkError,
	backend.CodeTooManyRequests:                      TooManyRequests,
	backend.CodeInvalidAPIKey:                        ConfigurationError,
	backend.CodeAppNotAuthorized:                     ConfigurationError,
	backend.CodeInvalidAppCredential:                 ConfigurationError,
}

var grpcKinds = map[codes.Code]Kind{
	codes.Unavailable:       NetworkError,
	codes.DeadlineExceeded:  NetworkError,
	codes.ResourceExhausted: TooManyRequests,
	codes.Unauthenticated:   CredentialInvalid,
	codes.PermissionDenied:  OperationNotAllowed,
}

// validation tags by field: tag -> kind.
var validationKinds = map[string]map[string]Kind{
	"Email":           {"required": MissingEmail, "email": InvalidEmail},
	"Password":        {"required": MissingPassword, "min": WeakPassword},
	"ConfirmPassword": {"eqfield": PasswordMismatch, "required": PasswordMismatch},
	"DisplayName":     {"required": MissingDisplayName},
	"PhotoURL":        {"url": InvalidPhotoURL},
}

// Classify maps any error to an *Error. It returns nil only for nil.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}

	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		if k, ok := validationKinds[fe.Field()][fe.Tag()]; ok {
			return New(k).wrap(err)
		}
		return New(Unknown).wrap(err)
	}

	if code, ok := backend.CodeOf(err); ok {
		if k, ok := providerKinds[code]; ok {
			return New(k).wrap(err)
		}
		return New(Unknown).wrap(err)
	}

	if errors.Is(err, backend.ErrNetwork) || errors.Is(err, context.DeadlineExceeded) {
		return New(NetworkError).wrap(err)
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return New(NetworkError).wrap(err)
	}

	if st, ok := status.FromError(err); ok {
		if k, ok := grpcKinds[st.Code()]; ok {
			return New(k).wrap(err)
		}
	}

	return WithMessage(Unknown, UnexpectedMessage).wrap(err)
}

// IsNetwork reports whether err is a transport failure. Rate limiting is
// in the network category but is not a transport failure.
func IsNetwork(err error) bool {
	return err != nil && Classify(err).Kind == NetworkError
}
