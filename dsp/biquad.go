package dsp

import "github.com/chewxy/math32"

// shelfQ fixes the shelf transition slope.
const shelfQ = 0.707

// biquad is a Direct Form I second order IIR section. Coefficients follow
// the Audio EQ Cookbook (Robert Bristow-Johnson); shelves use the fixed
// S=1 slope, the peaking band a caller-supplied Q.
type biquad struct {
	b0, b1, b2 float32
	a1, a2     float32

	x1, x2 float32
	y1, y2 float32
}

func (f *biquad) process(in float32) float32 {
	out := f.b0*in + f.b1*f.x1 + f.b2*f.x2 - f.a1*f.y1 - f.a2*f.y2
	f.x2, f.x1 = f.x1, in
	f.y2, f.y1 = f.y1, out
	return out
}

func (f *biquad) reset() {
	f.x1, f.x2 = 0, 0
	f.y1, f.y2 = 0, 0
}

// normalize divides all coefficients by a0 and stores them.
func (f *biquad) normalize(b0, b1, b2, a0, a1, a2 float32) {
	f.b0 = b0 / a0
	f.b1 = b1 / a0
	f.b2 = b2 / a0
	f.a1 = a1 / a0
	f.a2 = a2 / a0
}

func (f *biquad) lowShelf(sampleRate, freq, gainDB float32) {
	a := math32.Pow(10, gainDB/40)
	w0 := 2 * math32.Pi * freq / sampleRate
	cosW0 := math32.Cos(w0)
	// Q = 0.707 shelves
	alpha := math32.Sin(w0) / (2 * shelfQ)
	beta := 2 * math32.Sqrt(a) * alpha

	f.normalize(
		a*((a+1)-(a-1)*cosW0+beta),
		2*a*((a-1)-(a+1)*cosW0),
		a*((a+1)-(a-1)*cosW0-beta),
		(a+1)+(a-1)*cosW0+beta,
		-2*((a-1)+(a+1)*cosW0),
		(a+1)+(a-1)*cosW0-beta,
	)
}

func (f *biquad) highShelf(sampleRate, freq, gainDB float32) {
	a := math32.Pow(10, gainDB/40)
	w0 := 2 * math32.Pi * freq / sampleRate
	cosW0 := math32.Cos(w0)
	alpha := math32.Sin(w0) / (2 * shelfQ)
	beta := 2 * math32.Sqrt(a) * alpha

	f.normalize(
		a*((a+1)+(a-1)*cosW0+beta),
		-2*a*((a-1)+(a+1)*cosW0),
		a*((a+1)+(a-1)*cosW0-beta),
		(a+1)-(a-1)*cosW0+beta,
		2*((a-1)-(a+1)*cosW0),
		(a+1)-(a-1)*cosW0-beta,
	)
}

func (f *biquad) peaking(sampleRate, freq, gainDB, q float32) {
	a := math32.Pow(10, gainDB/40)
	w0 := 2 * math32.Pi * freq / sampleRate
	cosW0 := math32.Cos(w0)
	alpha := math32.Sin(w0) / (2 * q)

	f.normalize(
		1+alpha*a,
		-2*cosW0,
		1-alpha*a,
		1+alpha/a,
		-2*cosW0,
		1-alpha/a,
	)
}
