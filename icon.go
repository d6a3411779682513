package notifyfwd

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

// IconDecoder turns an icon payload received from the peer into pixels.
type IconDecoder interface {
	DecodeIcon(v any) (*image.RGBA, error)
}

// IconLoader resolves an icon name to a payload IconDecoder understands.
// It is used for notifications shown through Notify.
type IconLoader func(name string) (any, error)

// ImageDecoder is the default IconDecoder.
//
// It accepts nil (no icon), encoded image bytes, base64 encoded image bytes,
// and the [encoding, width, height, data] tuple used on the wire.
type ImageDecoder struct{}

func (ImageDecoder) DecodeIcon(v any) (*image.RGBA, error) {
	switch icon := v.(type) {
	case nil:
		return nil, nil
	case *image.RGBA:
		return icon, nil
	case []byte:
		if len(icon) == 0 {
			return nil, nil
		}
		return decodeImage(icon)
	case string:
		if icon == "" {
			return nil, nil
		}
		data, err := base64.StdEncoding.DecodeString(icon)
		if err != nil {
			return nil, fmt.Errorf("icon is not base64: %w", err)
		}
		return decodeImage(data)
	case []any:
		// [encoding, width, height, data]
		if len(icon) < 4 {
			return nil, fmt.Errorf("icon tuple has %d fields, need 4", len(icon))
		}
		return ImageDecoder{}.DecodeIcon(icon[3])
	default:
		return nil, fmt.Errorf("unsupported icon payload %T", v)
	}
}

func decodeImage(data []byte) (*image.RGBA, error) {
	decoded, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	img, ok := decoded.(*image.RGBA)
	if !ok {
		b := decoded.Bounds()
		m := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(m, m.Bounds(), decoded, b.Min, draw.Src)
		return m, nil
	}
	return img, nil
}
