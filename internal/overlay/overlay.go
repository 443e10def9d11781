// Package overlay coordinates the storefront's modal views: login/register,
// error, additional profile info and image search. Exactly one overlay (or none)
// is active at a time.
package overlay

import "github.com/knpstore/sport-store/internal/validation"

type Kind int

const (
	KindNone Kind = iota
	KindLogin
	KindError
	KindAdditionalInfo
	KindImageSearch
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindLogin:
		return "login"
	case KindError:
		return "error"
	case KindAdditionalInfo:
		return "additional-info"
	case KindImageSearch:
		return "image-search"
	default:
		return "unknown"
	}
}

// Mode selects the form shown by the login overlay.
type Mode int

const (
	ModeLogin Mode = iota
	ModeRegister
)

func (m Mode) String() string {
	if m == ModeRegister {
		return "register"
	}
	return "login"
}

// Overlay is the active view. Which fields are meaningful depends on Kind:
//
//	KindLogin           Mode, FieldErrors
//	KindError           Message, Back
//	KindAdditionalInfo  InlineError
//	KindImageSearch     Image, InlineError
type Overlay struct {
	Kind        Kind
	Mode        Mode
	FieldErrors validation.FieldErrors
	Message     string
	// Back is restored when the error overlay is closed.
	Back        *Overlay
	InlineError string
	Image       *Image
}

// Image is a file picked in the image search overlay.
type Image struct {
	Name        string
	ContentType string
	Size        int
}

func (o Overlay) clone() Overlay {
	if o.FieldErrors != nil {
		fe := make(validation.FieldErrors, len(o.FieldErrors))
		for k, v := range o.FieldErrors {
			fe[k] = v
		}
		o.FieldErrors = fe
	}
	if o.Back != nil {
		back := o.Back.clone()
		o.Back = &back
	}
	if o.Image != nil {
		img := *o.Image
		o.Image = &img
	}
	return o
}

func loginOverlay(mode Mode) Overlay {
	return Overlay{Kind: KindLogin, Mode: mode}
}
