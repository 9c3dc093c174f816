package catalog

import (
	"encoding/base64"
	"fmt"
)

type Image struct {
	ID   int    `json:"id"`
	URL  string `json:"url"`
	Name string `json:"name"`
}

var localImages = []Image{
	{ID: 1, URL: "/assets/imagem1.png", Name: "Image 1"},
	{ID: 2, URL: "/assets/imagem2.png", Name: "Image 2"},
	{ID: 3, URL: "/assets/imagem3.png", Name: "Image 3"},
	{ID: 4, URL: "/assets/imagem4.png", Name: "Image 4"},
}

var placeholderColors = []string{"#FF6B6B", "#4ECDC4", "#45B7D1", "#96CEB4", "#F7DC6F", "#BB8FCE"}

const placeholderSVG = `<svg width="150" height="150" xmlns="http://www.w3.org/2000/svg">` +
	`<defs><linearGradient id="grad%[1]d" x1="0%%" y1="0%%" x2="100%%" y2="100%%">` +
	`<stop offset="0%%" style="stop-color:%[2]s;stop-opacity:1"/>` +
	`<stop offset="100%%" style="stop-color:%[2]sdd;stop-opacity:1"/>` +
	`</linearGradient></defs>` +
	`<rect width="150" height="150" fill="url(#grad%[1]d)"/>` +
	`<circle cx="75" cy="60" r="20" fill="rgba(255,255,255,0.3)"/>` +
	`<text x="75" y="95" text-anchor="middle" dy=".3em" font-size="12" fill="white" font-weight="bold">Product %[3]d</text>` +
	`</svg>`

// PlaceholderImages are inline SVG data URIs, one per palette color.
func PlaceholderImages() []Image {
	out := make([]Image, 0, len(placeholderColors))
	for i, color := range placeholderColors {
		svg := fmt.Sprintf(placeholderSVG, i, color, i+1)
		out = append(out, Image{
			ID:   i + 1,
			URL:  "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(svg)),
			Name: fmt.Sprintf("placeholder%d", i+1),
		})
	}
	return out
}

// ImagePool is what the admin form can pick from: bundled images first,
// placeholders after.
func ImagePool() []Image {
	out := make([]Image, 0, len(localImages)+len(placeholderColors))
	out = append(out, localImages...)
	for i, img := range PlaceholderImages() {
		img.ID = len(localImages) + i + 1
		out = append(out, img)
	}
	return out
}
