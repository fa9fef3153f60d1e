package roc

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// Vendor error codes are negative, following the ROC convention of
// returning -errno or a NIX-specific code. The generic codes reuse the
// kernel errno values so log lines match what the C driver would emit.
const (
	ErrCodeRange  = -int(unix.ERANGE)
	ErrCodeInval  = -int(unix.EINVAL)
	ErrCodeNoMem  = -int(unix.ENOMEM)
	ErrCodeIO     = -int(unix.EIO)
	ErrCodeExist  = -int(unix.EEXIST)
	ErrCodeNoEnt  = -int(unix.ENOENT)
	ErrCodeBusy   = -int(unix.EBUSY)
	ErrCodeNotSup = -int(unix.EOPNOTSUPP)
)

// NIX TM specific error codes, below the errno range.
const (
	ErrCodeTMInvalidParent = -1000 - iota
	ErrCodeTMInvalidNode
	ErrCodeTMInvalidShaperProfile
	ErrCodeTMShaperProfileInUse
	ErrCodeTMChildExists
	ErrCodeTMHierarchyEnabled
)

// Error is a vendor-layer failure carrying the numeric ROC code.
type Error struct {
	Op   string
	Code int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s (%d)", e.Op, ErrorMsg(e.Code), e.Code)
}

// Errf builds a vendor error for the given operation and code.
func Errf(op string, code int) error {
	return &Error{Op: op, Code: code}
}

// ErrCode extracts the numeric ROC code from an error chain. Returns
// -EIO for errors that did not originate in the vendor layer.
func ErrCode(err error) int {
	var re *Error
	if errors.As(err, &re) {
		return re.Code
	}
	return ErrCodeIO
}

// ErrorMsg returns the symbolic string for a vendor error code, the
// equivalent of roc_error_msg_get.
func ErrorMsg(code int) string {
	switch code {
	case 0:
		return "NIX_ERR_OK"
	case ErrCodeRange:
		return "ERANGE"
	case ErrCodeInval:
		return "EINVAL"
	case ErrCodeNoMem:
		return "ENOMEM"
	case ErrCodeIO:
		return "EIO"
	case ErrCodeExist:
		return "EEXIST"
	case ErrCodeNoEnt:
		return "ENOENT"
	case ErrCodeBusy:
		return "EBUSY"
	case ErrCodeNotSup:
		return "EOPNOTSUPP"
	case ErrCodeTMInvalidParent:
		return "NIX_ERR_TM_INVALID_PARENT"
	case ErrCodeTMInvalidNode:
		return "NIX_ERR_TM_INVALID_NODE"
	case ErrCodeTMInvalidShaperProfile:
		return "NIX_ERR_TM_INVALID_SHAPER_PROFILE"
	case ErrCodeTMShaperProfileInUse:
		return "NIX_ERR_TM_SHAPER_PROFILE_IN_USE"
	case ErrCodeTMChildExists:
		return "NIX_ERR_TM_CHILD_EXISTS"
	case ErrCodeTMHierarchyEnabled:
		return "NIX_ERR_TM_HIERARCHY_ENABLED"
	default:
		return "NIX_ERR_UNKNOWN"
	}
}
