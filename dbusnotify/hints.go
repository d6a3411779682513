package dbusnotify

import (
	"image"

	"github.com/godbus/dbus/v5"
)

// Hint is one entry of the hints dictionary sent with a notification.
// See: https://specifications.freedesktop.org/notification-spec/latest/hints.html
type Hint struct {
	ID      string
	Variant dbus.Variant
}

// Urgency level of a notification.
type Urgency byte

const (
	UrgencyLow      Urgency = 0
	UrgencyNormal   Urgency = 1
	UrgencyCritical Urgency = 2
)

func (u Urgency) String() string {
	switch u {
	case UrgencyLow:
		return "Low"
	case UrgencyNormal:
		return "Normal"
	case UrgencyCritical:
		return "Critical"
	default:
		return "Unknown"
	}
}

const (
	hintUrgency       = "urgency"
	hintCategory      = "category"
	hintDesktopEntry  = "desktop-entry"
	hintImageData     = "image-data"
	hintImagePath     = "image-path"
	hintSoundFile     = "sound-file"
	hintSoundName     = "sound-name"
	hintSuppressSound = "suppress-sound"
	hintTransient     = "transient"
	hintResident      = "resident"
	hintActionIcons   = "action-icons"
	hintX             = "x"
	hintY             = "y"
)

func HintUrgency(u Urgency) Hint {
	return Hint{ID: hintUrgency, Variant: dbus.MakeVariant(byte(u))}
}

func HintCategory(category string) Hint {
	return Hint{ID: hintCategory, Variant: dbus.MakeVariant(category)}
}

func HintDesktopEntry(name string) Hint {
	return Hint{ID: hintDesktopEntry, Variant: dbus.MakeVariant(name)}
}

// HintImageFilePath points the server at an image file.
// The image-data hint takes precedence when both are set.
func HintImageFilePath(path string) Hint {
	return Hint{ID: hintImagePath, Variant: dbus.MakeVariant(path)}
}

func HintSoundWithFile(path string) Hint {
	return Hint{ID: hintSoundFile, Variant: dbus.MakeVariant(path)}
}

func HintSoundWithName(name string) Hint {
	return Hint{ID: hintSoundName, Variant: dbus.MakeVariant(name)}
}

// imageData matches the (iiibiiay) signature of the image-data hint.
type imageData struct {
	Width         int32
	Height        int32
	RowStride     int32
	HasAlpha      bool
	BitsPerSample int32
	Channels      int32
	Data          []byte
}

// HintImageDataRGBA sends raw pixels as the notification image.
func HintImageDataRGBA(img *image.RGBA) Hint {
	b := img.Bounds()
	return Hint{
		ID: hintImageData,
		Variant: dbus.MakeVariant(imageData{
			Width:         int32(b.Dx()),
			Height:        int32(b.Dy()),
			RowStride:     int32(img.Stride),
			HasAlpha:      true,
			BitsPerSample: 8,
			Channels:      4,
			Data:          img.Pix,
		}),
	}
}
