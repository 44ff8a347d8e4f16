package explainer

import "math"

// DefaultKernelWidth puts the weight of a sample with a quarter of its
// tokens masked at about one half.
const DefaultKernelWidth = 16.0

// Kernel weights a perturbed sample by its similarity to the original
// message.
type Kernel struct {
	width float64
}

func NewKernel(width float64) Kernel {
	if width <= 0 {
		width = DefaultKernelWidth
	}
	return Kernel{width: width}
}

func (k Kernel) Width() float64 {
	return k.width
}

// Distance is 100 times the cosine distance between the presence mask and
// the all-kept mask. A fully masked sample is at distance 100.
func (k Kernel) Distance(mask []bool) float64 {
	if len(mask) == 0 {
		return 0
	}
	kept := 0
	for _, m := range mask {
		if m {
			kept++
		}
	}
	if kept == 0 {
		return 100
	}
	cos := math.Sqrt(float64(kept) / float64(len(mask)))
	return 100 * (1 - cos)
}

// Weight maps distance through exp(-d²/width²); the unmasked sample
// weighs exactly 1.
func (k Kernel) Weight(mask []bool) float64 {
	d := k.Distance(mask)
	return math.Exp(-(d * d) / (k.width * k.width))
}
