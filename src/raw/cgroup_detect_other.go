//go:build !linux

package raw

// Detector reports cgroup layouts, which only exist on Linux.
type Detector struct{}

func NewDetector(string) *Detector {
	return &Detector{}
}

func (d *Detector) Detect() (CgroupLayout, error) {
	return CgroupLayout{}, ErrVersionUndetectable
}
