package lottie

// Wire structures of the subset of Lottie written by Encoder. Field names
// follow the Lottie schema abbreviations.

type animation struct {
	Version   string  `json:"v"`
	FrameRate float64 `json:"fr"`
	InPoint   float64 `json:"ip"`
	OutPoint  float64 `json:"op"`
	Width     int     `json:"w"`
	Height    int     `json:"h"`
	Name      string  `json:"nm"`
	ThreeD    int     `json:"ddd"`
	Assets    []any   `json:"assets"`
	Layers    []layer `json:"layers"`
}

type layer struct {
	ThreeD     int            `json:"ddd"`
	Index      int            `json:"ind"`
	Type       int            `json:"ty"`
	Name       string         `json:"nm"`
	Stretch    float64        `json:"sr"`
	Transform  layerTransform `json:"ks"`
	AutoOrient int            `json:"ao"`
	Shapes     []any          `json:"shapes"`
	InPoint    float64        `json:"ip"`
	OutPoint   float64        `json:"op"`
	StartTime  float64        `json:"st"`
	BlendMode  int            `json:"bm"`
}

type layerTransform struct {
	Opacity  prop `json:"o"`
	Rotation prop `json:"r"`
	Position prop `json:"p"`
	Anchor   prop `json:"a"`
	Scale    prop `json:"s"`
}

type shapeGroup struct {
	Type  string `json:"ty"`
	Name  string `json:"nm"`
	Items []any  `json:"it"`
}

type rect struct {
	Type     string `json:"ty"`
	Position prop   `json:"p"`
	Size     prop   `json:"s"`
	Radius   prop   `json:"r"`
}

type ellipse struct {
	Type     string `json:"ty"`
	Position prop   `json:"p"`
	Size     prop   `json:"s"`
}

type path struct {
	Type  string `json:"ty"`
	Shape prop   `json:"ks"`
}

type stroke struct {
	Type     string `json:"ty"`
	Color    prop   `json:"c"`
	Opacity  prop   `json:"o"`
	Width    prop   `json:"w"`
	LineCap  int    `json:"lc"`
	LineJoin int    `json:"lj"`
}

type fill struct {
	Type    string `json:"ty"`
	Color   prop   `json:"c"`
	Opacity prop   `json:"o"`
	Rule    int    `json:"r"`
}

type transform struct {
	Type     string `json:"ty"`
	Position prop   `json:"p"`
	Anchor   prop   `json:"a"`
	Scale    prop   `json:"s"`
	Rotation prop   `json:"r"`
	Opacity  prop   `json:"o"`
}

// prop is an animatable property: Value is the constant when Animated is 0
// and a []keyframe when it is 1.
type prop struct {
	Animated int `json:"a"`
	Value    any `json:"k"`
}

type keyframe struct {
	Time  float64 `json:"t"`
	Start any     `json:"s"`
	Hold  int     `json:"h,omitempty"`
	In    *easing `json:"i,omitempty"`
	Out   *easing `json:"o,omitempty"`
}

type easing struct {
	X []float64 `json:"x"`
	Y []float64 `json:"y"`
}

type bezierShape struct {
	Closed   bool        `json:"c"`
	Vertices [][]float64 `json:"v"`
	In       [][]float64 `json:"i"`
	Out      [][]float64 `json:"o"`
}
