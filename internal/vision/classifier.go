package vision

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
	"golang.org/x/image/draw"
)

// Model input geometry: a single-channel 500x500 image, NHWC with batch 1.
const (
	width  = 500
	height = 500
)

const positiveThreshold = 0.5

// Label is the screening outcome mapped from the model's scalar output.
type Label string

const (
	LabelPositive Label = "Positive"
	LabelNegative Label = "Negative"
)

// Result holds the raw model score and its user-facing mapping.
type Result struct {
	Score   float32 `json:"score"`
	Percent float64 `json:"percent"`
	Label   Label   `json:"label"`
}

// String renders the classification the way it is shown to the user,
// e.g. "Positive (91.00%)".
func (r Result) String() string {
	return fmt.Sprintf("%s (%.2f%%)", r.Label, r.Percent)
}

// ResultFromScore maps the model's sigmoid output in [0,1] to a Result.
// Positive iff score >= 0.5; percent is score*100.
func ResultFromScore(score float32) Result {
	label := LabelNegative
	if score >= positiveThreshold {
		label = LabelPositive
	}
	return Result{
		Score:   score,
		Percent: float64(score) * 100,
		Label:   label,
	}
}

// Classifier runs the pretrained pneumonia CNN via ONNX Runtime. The session
// and its tensors are loaded lazily once and shared across requests; Classify
// serializes on the mutex because the input/output tensors are reused.
type Classifier struct {
	mu sync.Mutex

	modelPath string
	libPath   string

	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
	inited  bool
}

// NewClassifier creates a classifier that will lazily load the ONNX model.
func NewClassifier(modelPath, onnxLibPath string) *Classifier {
	return &Classifier{
		modelPath: modelPath,
		libPath:   onnxLibPath,
	}
}

func (c *Classifier) initLocked() error {
	if c.inited {
		return nil
	}

	if c.libPath != "" {
		ort.SetSharedLibraryPath(c.libPath)
	}

	if err := ort.InitializeEnvironment(); err != nil {
		return fmt.Errorf("onnx init environment: %w", err)
	}

	inputs, outputs, err := ort.GetInputOutputInfo(c.modelPath)
	if err != nil {
		return fmt.Errorf("onnx get input/output info: %w", err)
	}
	if len(inputs) == 0 || len(outputs) == 0 {
		return fmt.Errorf("onnx model has no inputs or outputs")
	}

	inputTensor, err := ort.NewEmptyTensor[float32](inputs[0].Dimensions)
	if err != nil {
		return fmt.Errorf("onnx new input tensor: %w", err)
	}

	outputTensor, err := ort.NewEmptyTensor[float32](outputs[0].Dimensions)
	if err != nil {
		inputTensor.Destroy()
		return fmt.Errorf("onnx new output tensor: %w", err)
	}

	inputNames := make([]string, len(inputs))
	for i := range inputs {
		inputNames[i] = inputs[i].Name
	}
	outputNames := make([]string, len(outputs))
	for i := range outputs {
		outputNames[i] = outputs[i].Name
	}

	session, err := ort.NewAdvancedSession(c.modelPath, inputNames, outputNames,
		[]ort.Value{inputTensor}, []ort.Value{outputTensor}, nil)
	if err != nil {
		outputTensor.Destroy()
		inputTensor.Destroy()
		return fmt.Errorf("onnx new session: %w", err)
	}

	c.input = inputTensor
	c.output = outputTensor
	c.session = session
	c.inited = true
	return nil
}

// Classify decodes the image, preprocesses it to the 500x500 grayscale tensor
// the model expects, runs inference once, and maps the scalar output.
func (c *Classifier) Classify(imageData []byte) (Result, error) {
	img, err := DecodeImage(imageData)
	if err != nil {
		return Result{}, fmt.Errorf("decode image: %w", err)
	}

	inputData := Preprocess(img)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.initLocked(); err != nil {
		return Result{}, err
	}

	inData := c.input.GetData()
	if len(inData) < len(inputData) {
		return Result{}, fmt.Errorf("input tensor size %d < preprocessed %d", len(inData), len(inputData))
	}
	copy(inData, inputData)

	if err := c.session.Run(); err != nil {
		return Result{}, fmt.Errorf("onnx run: %w", err)
	}

	outData := c.output.GetData()
	if len(outData) == 0 {
		return Result{}, fmt.Errorf("onnx output tensor is empty")
	}

	return ResultFromScore(outData[0]), nil
}

// Close releases the ONNX session and tensors.
func (c *Classifier) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.inited {
		return
	}
	c.session.Destroy()
	c.output.Destroy()
	c.input.Destroy()
	ort.DestroyEnvironment()
	c.inited = false
}

// DecodeImage decodes PNG or JPEG bytes.
func DecodeImage(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		// Try JPEG and PNG explicitly (image.Decode may not recognize some)
		img, err = jpeg.Decode(bytes.NewReader(data))
		if err != nil {
			img, err = png.Decode(bytes.NewReader(data))
			if err != nil {
				return nil, err
			}
		}
	}
	return img, nil
}

// IsGrayscale reports whether the decoded image carries a single channel,
// which is what the X-ray model was trained on.
func IsGrayscale(img image.Image) bool {
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		return true
	}
	return false
}

// Preprocess scales img to 500x500, converts to single-channel grayscale,
// and normalizes intensities to [0,1]. Layout is NHWC: [1, 500, 500, 1].
func Preprocess(img image.Image) []float32 {
	dst := image.NewGray(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)

	out := make([]float32, 1*height*width*1)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			out[y*width+x] = float32(dst.GrayAt(x, y).Y) / 255.0
		}
	}
	return out
}
