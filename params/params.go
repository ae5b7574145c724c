// Package params holds the solver-independent training parameters and
// loads them from the environment or a YAML file.
package params

import (
	"fmt"
	"io/ioutil"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/jgreitemann/svm/kernel"
	"github.com/jgreitemann/svm/ml/svm"
)

type Machine string

const (
	CSVC  Machine = "c_svc"
	NuSVC Machine = "nu_svc"
)

// Weight scales the regularization of the class with the given encoded
// label.
type Weight struct {
	Label  int     `yaml:"label" json:"label"`
	Factor float64 `yaml:"factor" json:"factor"`
}

// Parameters are the training settings shared by every kernel.
// Regularization is C for C-SVC and nu for nu-SVC.
type Parameters struct {
	Machine        Machine  `yaml:"machine" json:"machine" envconfig:"SVM_MACHINE" default:"nu_svc"`
	Regularization float64  `yaml:"regularization" json:"regularization" envconfig:"SVM_REGULARIZATION" default:"0.1"`
	CacheSize      float64  `yaml:"cache_size" json:"cache_size" envconfig:"SVM_CACHE_SIZE" default:"100"`
	Eps            float64  `yaml:"eps" json:"eps" envconfig:"SVM_EPS" default:"0.001"`
	Shrinking      bool     `yaml:"shrinking" json:"shrinking" envconfig:"SVM_SHRINKING" default:"true"`
	Weights        []Weight `yaml:"weights,omitempty" json:"weights,omitempty" ignored:"true"`
}

func Default() Parameters {
	return Parameters{
		Machine:        NuSVC,
		Regularization: 0.1,
		CacheSize:      100,
		Eps:            1e-3,
		Shrinking:      true,
	}
}

// FromEnvironment reads the SVM_* variables, falling back to Default.
func FromEnvironment() (Parameters, error) {
	var p Parameters
	if err := envconfig.Process("", &p); err != nil {
		return Parameters{}, err
	}
	if err := p.Validate(); err != nil {
		return Parameters{}, err
	}
	return p, nil
}

// Load reads a YAML parameter file. Fields missing from the file keep their
// defaults.
func Load(path string) (Parameters, error) {
	buf, err := ioutil.ReadFile(path)
	if err != nil {
		return Parameters{}, err
	}
	p := Default()
	if err := yaml.Unmarshal(buf, &p); err != nil {
		return Parameters{}, fmt.Errorf("params: parsing %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return Parameters{}, err
	}
	return p, nil
}

func (p Parameters) Validate() error {
	switch p.Machine {
	case CSVC, NuSVC:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedMachine, p.Machine)
}

// Solver builds the solver parameters for training with k.
func (p Parameters) Solver(k kernel.Kernel) (svm.Parameter, error) {
	if err := p.Validate(); err != nil {
		return svm.Parameter{}, err
	}
	sp := svm.Parameter{
		CacheSize: p.CacheSize,
		Eps:       p.Eps,
	}
	switch p.Machine {
	case CSVC:
		sp.SvmType = svm.CSvc
		sp.C = p.Regularization
	case NuSVC:
		sp.SvmType = svm.NuSvc
		sp.Nu = p.Regularization
	}
	if p.Shrinking {
		sp.Shrinking = 1
	}
	for _, w := range p.Weights {
		sp.WeightLabel = append(sp.WeightLabel, w.Label)
		sp.Weight = append(sp.Weight, w.Factor)
	}
	sp.NrWeight = len(p.Weights)
	kernel.Configure(k, &sp)
	return sp, nil
}

// FromSolver recovers the parameters stored in a trained record.
func FromSolver(sp svm.Parameter) (Parameters, error) {
	p := Parameters{
		CacheSize: sp.CacheSize,
		Eps:       sp.Eps,
		Shrinking: sp.Shrinking == 1,
	}
	switch sp.SvmType {
	case svm.CSvc:
		p.Machine = CSVC
		p.Regularization = sp.C
	case svm.NuSvc:
		p.Machine = NuSVC
		p.Regularization = sp.Nu
	default:
		return Parameters{}, fmt.Errorf("%w: solver type %d", ErrUnsupportedMachine, sp.SvmType)
	}
	for i := 0; i < sp.NrWeight && i < len(sp.WeightLabel) && i < len(sp.Weight); i++ {
		p.Weights = append(p.Weights, Weight{Label: sp.WeightLabel[i], Factor: sp.Weight[i]})
	}
	return p, nil
}
