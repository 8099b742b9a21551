package domain

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"time"
)

const (
	DefaultSiteTitle     = "My E-commerce Site"
	DefaultContactEmail  = "support@example.com"
	DefaultContactNumber = "1234567890"
	DefaultMainColor     = "#FF69B4"

	DefaultAdminTokenTTL = 7 * 24 * time.Hour
)

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

type BankDetails struct {
	ID            int64  `json:"id"`
	BankName      string `json:"bank_name"`
	AccountName   string `json:"account_name"`
	AccountNumber string `json:"account_number"`
}

func (b *BankDetails) Validate() error {
	if b.BankName == "" || b.AccountName == "" || b.AccountNumber == "" {
		return errors.New("bank_name, account_name and account_number are required")
	}
	return nil
}

type SiteSettings struct {
	ID            int64  `json:"id"`
	SiteTitle     string `json:"site_title"`
	ContactEmail  string `json:"contact_email"`
	ContactNumber string `json:"contact_number"`
	MainColor     string `json:"main_color"`
	StoreTag      string `json:"store_tag"`
}

func DefaultSiteSettings() SiteSettings {
	return SiteSettings{
		SiteTitle:     DefaultSiteTitle,
		ContactEmail:  DefaultContactEmail,
		ContactNumber: DefaultContactNumber,
		MainColor:     DefaultMainColor,
	}
}

func (s *SiteSettings) Validate() error {
	if !hexColor.MatchString(s.MainColor) {
		return fmt.Errorf("main_color %q is not a #RRGGBB colour", s.MainColor)
	}
	return nil
}

// Theme is the palette every storefront component is drawn with.
type Theme struct {
	MainColor      string `json:"main_color"`
	LightenedShade string `json:"lightened_shade"`
	LighterShade   string `json:"lighter_shade"`
}

func (s SiteSettings) Theme() Theme {
	main := s.MainColor
	if !hexColor.MatchString(main) {
		main = DefaultMainColor
	}
	return Theme{
		MainColor:      main,
		LightenedShade: Lighten(main, 0.47),
		LighterShade:   Lighten(main, 0.6),
	}
}

// Lighten raises the HSL lightness of a #RRGGBB colour by amount (0..1),
// clamping at white. Malformed input is returned unchanged.
func Lighten(color string, amount float64) string {
	if !hexColor.MatchString(color) {
		return color
	}
	rgb, _ := strconv.ParseUint(color[1:], 16, 32)
	r := float64(rgb>>16&0xff) / 255
	g := float64(rgb>>8&0xff) / 255
	b := float64(rgb&0xff) / 255

	h, sat, l := rgbToHSL(r, g, b)
	l = math.Min(1, math.Max(0, l+amount))
	r, g, b = hslToRGB(h, sat, l)

	return fmt.Sprintf("#%02x%02x%02x", toByte(r), toByte(g), toByte(b))
}

func toByte(v float64) int {
	return int(math.Round(v * 255))
}

func rgbToHSL(r, g, b float64) (h, s, l float64) {
	max := math.Max(r, math.Max(g, b))
	min := math.Min(r, math.Min(g, b))
	l = (max + min) / 2
	if max == min {
		return 0, 0, l
	}

	d := max - min
	if l > 0.5 {
		s = d / (2 - max - min)
	} else {
		s = d / (max + min)
	}

	switch max {
	case r:
		h = (g - b) / d
		if g < b {
			h += 6
		}
	case g:
		h = (b-r)/d + 2
	default:
		h = (r-g)/d + 4
	}
	return h / 6, s, l
}

func hslToRGB(h, s, l float64) (r, g, b float64) {
	if s == 0 {
		return l, l, l
	}
	var q float64
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q
	return hueToRGB(p, q, h+1.0/3), hueToRGB(p, q, h), hueToRGB(p, q, h-1.0/3)
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	switch {
	case t < 1.0/6:
		return p + (q-p)*6*t
	case t < 1.0/2:
		return q
	case t < 2.0/3:
		return p + (q-p)*(2.0/3-t)*6
	}
	return p
}

type AdminToken struct {
	Token     string
	CreatedAt time.Time
}

func (t AdminToken) Valid(now time.Time, ttl time.Duration) bool {
	return now.Sub(t.CreatedAt) < ttl
}
