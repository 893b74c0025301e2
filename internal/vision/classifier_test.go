package vision

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func TestResultFromScore(t *testing.T) {
	tests := []struct {
		score     float32
		wantLabel Label
		wantStr   string
	}{
		{0, LabelNegative, "Negative (0.00%)"},
		{0.12, LabelNegative, "Negative (12.00%)"},
		{0.4999, LabelNegative, "Negative (49.99%)"},
		{0.5, LabelPositive, "Positive (50.00%)"},
		{0.91, LabelPositive, "Positive (91.00%)"},
		{1, LabelPositive, "Positive (100.00%)"},
	}
	for _, tt := range tests {
		got := ResultFromScore(tt.score)
		if got.Label != tt.wantLabel {
			t.Errorf("ResultFromScore(%v).Label = %v, want %v", tt.score, got.Label, tt.wantLabel)
		}
		if s := got.String(); s != tt.wantStr {
			t.Errorf("ResultFromScore(%v).String() = %q, want %q", tt.score, s, tt.wantStr)
		}
	}
}

func TestResultPercentConsistent(t *testing.T) {
	for _, score := range []float32{0, 0.001, 0.2, 0.5, 0.75, 1} {
		r := ResultFromScore(score)
		if r.Percent != float64(score)*100 {
			t.Errorf("Percent = %v, want %v", r.Percent, float64(score)*100)
		}
		if (r.Label == LabelPositive) != (score >= 0.5) {
			t.Errorf("label %v inconsistent with score %v", r.Label, score)
		}
	}
}

func TestPreprocessShapeAndRange(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 64, 48))
	for y := 0; y < 48; y++ {
		for x := 0; x < 64; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8((x + y) % 256)})
		}
	}

	data := Preprocess(img)
	if len(data) != width*height {
		t.Fatalf("tensor length = %d, want %d", len(data), width*height)
	}
	for i, v := range data {
		if v < 0 || v > 1 {
			t.Fatalf("value %v at index %d outside [0,1]", v, i)
		}
	}
}

func TestPreprocessUniformImages(t *testing.T) {
	white := image.NewGray(image.Rect(0, 0, 32, 32))
	for i := range white.Pix {
		white.Pix[i] = 255
	}
	for _, v := range Preprocess(white) {
		if v != 1 {
			t.Fatalf("white pixel normalized to %v, want 1", v)
		}
	}

	black := image.NewGray(image.Rect(0, 0, 32, 32))
	for _, v := range Preprocess(black) {
		if v != 0 {
			t.Fatalf("black pixel normalized to %v, want 0", v)
		}
	}
}

func TestIsGrayscale(t *testing.T) {
	if !IsGrayscale(image.NewGray(image.Rect(0, 0, 4, 4))) {
		t.Error("8-bit gray image should be grayscale")
	}
	if !IsGrayscale(image.NewGray16(image.Rect(0, 0, 4, 4))) {
		t.Error("16-bit gray image should be grayscale")
	}
	if IsGrayscale(image.NewNRGBA(image.Rect(0, 0, 4, 4))) {
		t.Error("NRGBA image should not be grayscale")
	}
	if IsGrayscale(image.NewRGBA(image.Rect(0, 0, 4, 4))) {
		t.Error("RGBA image should not be grayscale")
	}
}

func TestDecodeImage(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 8, 8))

	var pngBuf bytes.Buffer
	if err := png.Encode(&pngBuf, gray); err != nil {
		t.Fatal(err)
	}
	if _, err := DecodeImage(pngBuf.Bytes()); err != nil {
		t.Errorf("decode png: %v", err)
	}

	var jpegBuf bytes.Buffer
	if err := jpeg.Encode(&jpegBuf, gray, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := DecodeImage(jpegBuf.Bytes()); err != nil {
		t.Errorf("decode jpeg: %v", err)
	}

	if _, err := DecodeImage([]byte("not an image")); err == nil {
		t.Error("expected error for garbage bytes")
	}
}
