package property

import "errors"

var (
	ErrPropertyNotFound   = errors.New("property not found")
	ErrNotPropertyOwner   = errors.New("you can only manage your own listings")
	ErrOnlyHostsCanCreate = errors.New("only hosts and agents can create listings")
	ErrInvalidPriceRange  = errors.New("invalid price range")
	ErrInvalidHostRef     = errors.New("host reference does not exist")
	ErrPhotoNotFound      = errors.New("photo not found")
	ErrUnsupportedMedia   = errors.New("unsupported media type")
)
