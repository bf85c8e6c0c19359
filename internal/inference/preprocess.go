// AngelaMos | 2026
// preprocess.go

package inference

import (
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"

	"github.com/carterperez-dev/leafcare/internal/core"
)

const DefaultInputSize = 128

// Tensor is one image as height x width x RGB, values in 0..255.
type Tensor [][][3]float32

func Decode(r io.Reader) (image.Image, error) {
	img, err := imaging.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode image: %v: %w", err, core.ErrInvalidInput)
	}

	return img, nil
}

// Preprocess resizes img to size x size with nearest-neighbour sampling and
// emits raw channel values without normalisation, the layout the model was
// trained on. Alpha is dropped.
func Preprocess(img image.Image, size int) Tensor {
	if size <= 0 {
		size = DefaultInputSize
	}

	resized := imaging.Resize(img, size, size, imaging.NearestNeighbor)

	tensor := make(Tensor, size)
	for y := range size {
		row := make([][3]float32, size)
		for x := range size {
			off := y*resized.Stride + x*4
			row[x] = [3]float32{
				float32(resized.Pix[off]),
				float32(resized.Pix[off+1]),
				float32(resized.Pix[off+2]),
			}
		}
		tensor[y] = row
	}

	return tensor
}
