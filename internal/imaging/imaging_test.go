package imaging

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

func testPNG(t *testing.T) (image.Image, []byte) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 60), G: uint8(y * 100), B: 30, A: 255})
		}
	}
	data, err := EncodePNG(img)
	if err != nil {
		t.Fatalf("EncodePNG: %v", err)
	}
	return img, data
}

func TestDecodeRoundTrip(t *testing.T) {
	src, data := testPNG(t)

	got, err := Decode("four-by-two.png", data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Bounds() != src.Bounds() {
		t.Errorf("bounds = %v, want %v", got.Bounds(), src.Bounds())
	}
}

func TestDecodeBadDataReturnsAssetDecodeError(t *testing.T) {
	_, err := Decode("broken.jpg", []byte("not an image"))
	if err == nil {
		t.Fatal("expected error")
	}
	var decodeErr *AssetDecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("error %T is not *AssetDecodeError", err)
	}
	if decodeErr.Filename != "broken.jpg" {
		t.Errorf("Filename = %q", decodeErr.Filename)
	}
}

func TestGrayscale(t *testing.T) {
	src, _ := testPNG(t)
	gray := Grayscale(src)
	if _, ok := gray.(*image.Gray); !ok {
		t.Fatalf("got %T, want *image.Gray", gray)
	}
	if gray.Bounds() != src.Bounds() {
		t.Errorf("bounds changed: %v", gray.Bounds())
	}
}

func TestFlipHorizontal(t *testing.T) {
	src, _ := testPNG(t)
	flipped := FlipHorizontal(src)

	bounds := src.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			want := src.At(x, y)
			got := flipped.At(bounds.Max.X-1-x, y)
			wr, wg, wb, wa := want.RGBA()
			gr, gg, gb, ga := got.RGBA()
			if wr != gr || wg != gg || wb != gb || wa != ga {
				t.Fatalf("pixel (%d,%d) not mirrored", x, y)
			}
		}
	}
}

func TestFlipTwiceRestoresImage(t *testing.T) {
	src, _ := testPNG(t)
	twice := FlipHorizontal(FlipHorizontal(src))
	bounds := src.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			wr, wg, wb, wa := src.At(x, y).RGBA()
			gr, gg, gb, ga := twice.At(x, y).RGBA()
			if wr != gr || wg != gg || wb != gb || wa != ga {
				t.Fatalf("pixel (%d,%d) changed after double flip", x, y)
			}
		}
	}
}

func TestTransformOrder(t *testing.T) {
	src, _ := testPNG(t)

	if got := Transform(src, false, false); got != src {
		t.Error("no-op transform should return the source image")
	}
	if _, ok := Transform(src, true, false).(*image.Gray); !ok {
		t.Error("grayscale-only transform should yield *image.Gray")
	}
	both := Transform(src, true, true)
	if both.Bounds() != src.Bounds() {
		t.Errorf("bounds changed: %v", both.Bounds())
	}
}

func TestDimensions(t *testing.T) {
	_, data := testPNG(t)
	w, h, err := Dimensions(data)
	if err != nil {
		t.Fatalf("Dimensions: %v", err)
	}
	if w != 4 || h != 2 {
		t.Errorf("got %dx%d, want 4x2", w, h)
	}

	if _, _, err := Dimensions([]byte("junk")); err == nil {
		t.Error("expected error for junk data")
	}
}
