package proxy

import (
	"testing"

	. "github.com/franela/goblin"
	"github.com/jmgilman/go/errors"
	"github.com/thebartekbanach/imgpipe/pkg/cachekey"
	"github.com/thebartekbanach/imgpipe/pkg/processor"
	"github.com/thebartekbanach/imgpipe/pkg/request"
)

func TestRequestParser(t *testing.T) {
	g := Goblin(t)

	g.Describe("ParseRequest", func() {
		g.It("Should correctly destruct given request path into processing steps", func() {
			r, err := ParseRequest("/resize?url=http://google.com/image.jpg&w=10&h=20&grayscale&blur=1.5")

			g.Assert(err).IsNil()
			g.Assert(r.URL).Equal("http://google.com/image.jpg")
			g.Assert(processor.Identifiers(r.Processors)).Equal("resize(w=10,h=20)|blur(r=1.5)|grayscale")
			g.Assert(r.Priority).Equal(request.PriorityNormal)
		})

		g.It("Should generate the same cache keys regardless of params order", func() {
			first, _ := ParseRequest("/fit?w=10&h=20&sharpen&url=http://google.com/image.jpg&brightness=0.2")
			second, _ := ParseRequest("/fit?brightness=0.2&url=http://google.com/image.jpg&sharpen&h=20&w=10")
			third, _ := ParseRequest("/fit?brightness=0.3&url=http://google.com/image.jpg&sharpen&h=20&w=10")

			g.Assert(cachekey.ForMemory(first) == cachekey.ForMemory(second)).IsTrue()
			g.Assert(cachekey.ForDisk(first)).Equal(cachekey.ForDisk(second))
			g.Assert(cachekey.ForMemory(first) == cachekey.ForMemory(third)).IsFalse()
		})

		g.It("Should not add any step for original image", func() {
			for _, path := range []string{"/?url=http://google.com/image.jpg", "/original?url=http://google.com/image.jpg"} {
				r, err := ParseRequest(path)

				g.Assert(err).IsNil()
				g.Assert(len(r.Processors)).Equal(0)
			}
		})

		g.It("Should crop the rectangle at given offset", func() {
			r, err := ParseRequest("/crop?url=http://google.com/image.jpg&x=1&y=2&w=3&h=4")

			g.Assert(err).IsNil()
			g.Assert(processor.Identifiers(r.Processors)).Equal("crop(1,2,4,6)")
		})

		g.It("Should map cache, id and max params to request options", func() {
			r, err := ParseRequest("/?url=http://google.com/image.jpg?sig=abc&id=image-1&max=100&cache=reload")

			g.Assert(err).IsNil()
			g.Assert(r.ImageID).Equal("image-1")
			g.Assert(r.Options.MaxPixelSize).Equal(100)
			g.Assert(r.Options.CachePolicy).Equal(request.CachePolicyReloadIgnoringCachedData)

			r, err = ParseRequest("/?url=http://google.com/image.jpg&cache=only")
			g.Assert(err).IsNil()
			g.Assert(r.CanLoad()).IsFalse()
		})

		g.It("Should return error when url param is not included", func() {
			_, err := ParseRequest("/resize?w=10")

			g.Assert(errors.Is(err, ErrURLParamNotIncluded)).IsTrue()
			g.Assert(errors.GetCode(err)).Equal(errors.CodeInvalidInput)
		})

		g.It("Should return error when operation is not supported", func() {
			_, err := ParseRequest("/rotate?url=http://google.com/image.jpg")

			g.Assert(errors.Is(err, ErrOperationNotSupported)).IsTrue()
		})

		g.It("Should return error for malformed or negative params", func() {
			paths := []string{
				"/resize?url=http://google.com/image.jpg&w=abc",
				"/resize?url=http://google.com/image.jpg&w=-10",
				"/resize?url=http://google.com/image.jpg",
				"/?url=http://google.com/image.jpg&blur=much",
				"/?url=http://google.com/image.jpg&cache=sometimes",
			}

			for _, path := range paths {
				_, err := ParseRequest(path)
				g.Assert(errors.Is(err, ErrInvalidParam)).IsTrue(path)
			}
		})
	})
}
