package hcloud

import (
	"github.com/hetznercloud/hcloud-go/v2/hcloud"
)

// Another action holds the server. The request succeeds once it finishes.
var busyCodes = []hcloud.ErrorCode{
	hcloud.ErrorCodeLocked,
	hcloud.ErrorCodeConflict,
	hcloud.ErrorCodeResourceLocked,
	hcloud.ErrorCodeResourceUnavailable,
}

// The create request itself is wrong. Repeating it cannot help.
var rejectedCodes = []hcloud.ErrorCode{
	hcloud.ErrorCodeNotFound,
	hcloud.ErrorCodeInvalidInput,
	hcloud.ErrorCodeInvalidServerType,
	hcloud.ErrorCodeUniquenessError,
}

func isResourceLocked(err error) bool {
	return err != nil && hcloud.IsError(err, busyCodes...)
}

func isInvalidParameter(err error) bool {
	return err != nil && hcloud.IsError(err, rejectedCodes...)
}

func isNotFound(err error) bool {
	return err != nil && hcloud.IsError(err, hcloud.ErrorCodeNotFound)
}
