// Package filter provides the per-pixel and block kernels of the adjustment
// chain.
//
// The kernels operate in place on premultiplied float buffers from
// internal/image and split their rows across an internal/parallel pool:
//   - ColorMatrix: 4x5 affine color transform in straight alpha
//   - Vibrance: saturation boost weighted by how unsaturated a pixel is
//   - Pixelate: block averaging on an origin-aligned grid
//
// None of the kernels clamp. Callers clamp where a later stage needs values
// in [0, 1].
package filter
