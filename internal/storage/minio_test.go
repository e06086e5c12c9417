package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectName(t *testing.T) {
	a := ObjectName("p1", "Sofa.JPG")
	b := ObjectName("p1", "Sofa.JPG")

	assert.True(t, strings.HasPrefix(a, "products/p1/"))
	assert.True(t, strings.HasSuffix(a, ".jpg"))
	assert.NotEqual(t, a, b)
}

func TestPublicBaseURL(t *testing.T) {
	assert.Equal(t, "http://localhost:9000/furniro-products",
		publicBaseURL(Config{Endpoint: "localhost:9000", Bucket: "furniro-products"}))
	assert.Equal(t, "https://s3.example.com/img",
		publicBaseURL(Config{Endpoint: "s3.example.com", Bucket: "img", UseSSL: true}))
}
