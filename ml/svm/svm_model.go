package svm

const (
	CSvc       = 0
	NuSvc      = 1
	OneClass   = 2
	EpsilonSvr = 3
	NuSvr      = 4

	KernelTypeLinear      = 0
	KernelTypePoly        = 1
	KernelTypeRbf         = 2
	KernelTypeSigmoid     = 3
	KernelTypePrecomputed = 4
)

// EndIndex marks the terminating node of a sparse vector.
const EndIndex = -1

// Node is one (index, value) entry of a sparse vector.
type Node struct {
	Index int     `json:"index" yaml:"index"`
	Value float64 `json:"value" yaml:"value"`
}

// End returns the terminating node.
func End() Node {
	return Node{Index: EndIndex}
}

// Problem is the flat training input: L samples X with numeric labels Y.
type Problem struct {
	L int
	Y []float64
	X [][]Node
}

type Parameter struct {
	SvmType     int       `json:"svm_type" yaml:"svm_type"`
	KernelType  int       `json:"kernel_type" yaml:"kernel_type"`
	Degree      int       `json:"degree" yaml:"degree"`
	Gamma       float64   `json:"gamma" yaml:"gamma"`
	Coef0       float64   `json:"coef_0" yaml:"coef_0"`
	CacheSize   float64   `json:"cache_size" yaml:"cache_size"`
	Eps         float64   `json:"eps" yaml:"eps"`
	C           float64   `json:"c" yaml:"c"`
	NrWeight    int       `json:"nr_weight" yaml:"nr_weight"`
	WeightLabel []int     `json:"weight_label" yaml:"weight_label"`
	Weight      []float64 `json:"weight" yaml:"weight"`
	Nu          float64   `json:"nu" yaml:"nu"`
	P           float64   `json:"p" yaml:"p"`
	Shrinking   int       `json:"shrinking" yaml:"shrinking"`
	Probability int       `json:"probability" yaml:"probability"`
}

func (p Parameter) OneOfTypes(types ...int) bool {
	for _, tp := range types {
		if p.SvmType == tp {
			return true
		}
	}
	return false
}

// Model is the trained record. Classes appear in Label in the order the
// solver first encountered them; pairwise quantities follow that order.
type Model struct {
	Param     Parameter   `json:"param" yaml:"param"`
	NrClass   int         `json:"nr_class" yaml:"nr_class"`
	L         int         `json:"l" yaml:"l"`
	SV        [][]Node    `json:"sv" yaml:"sv"`
	SvCoef    [][]float64 `json:"sv_coef" yaml:"sv_coef"`
	Rho       []float64   `json:"rho" yaml:"rho"`
	ProbA     []float64   `json:"prob_a,omitempty" yaml:"prob_a,omitempty"`
	ProbB     []float64   `json:"prob_b,omitempty" yaml:"prob_b,omitempty"`
	SvIndices []int       `json:"sv_indices,omitempty" yaml:"sv_indices,omitempty"`
	Label     []int       `json:"label" yaml:"label"`
	NSV       []int       `json:"nsv" yaml:"nsv"`
}

// NrClassifiers is the number of pairwise decision functions.
func (model *Model) NrClassifiers() int {
	return model.NrClass * (model.NrClass - 1) / 2
}

// FreeModel drops every array held by the model.
func FreeModel(model *Model) {
	*model = Model{}
}
