package utils

import (
	"strings"

	"furniro_back_end/internal/models"
)

// OptimizeImageURL ajoute les paramètres de redimensionnement des CDN connus.
// Une URL qui porte déjà une query est laissée telle quelle.
func OptimizeImageURL(raw string) string {
	if raw == "" || strings.Contains(raw, "?") {
		return raw
	}
	switch {
	case strings.Contains(raw, "unsplash.com"):
		return raw + "?w=800&q=80&fm=webp&fit=crop"
	case strings.Contains(raw, "pexels.com"):
		return raw + "?auto=compress&cs=tinysrgb&w=800&h=600&fit=crop"
	}
	return raw
}

// OptimizeProductImages retourne une copie du produit avec des URLs optimisées.
func OptimizeProductImages(p models.Product) models.Product {
	if len(p.Images) == 0 {
		return p
	}
	images := make([]string, len(p.Images))
	for i, img := range p.Images {
		images[i] = OptimizeImageURL(img)
	}
	p.Images = images
	return p
}
