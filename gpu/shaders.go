// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

// workgroupSize matches @workgroup_size in colorMatrixShaderSource.
const workgroupSize = 64

// maxWorkgroupsPerDim is the WebGPU default limit on dispatch size per
// dimension. Larger images spill into the y dimension.
const maxWorkgroupsPerDim = 65535

// colorMatrixShaderSource transforms premultiplied RGBA float pixels in
// place with a 4x5 straight-alpha matrix.
const colorMatrixShaderSource = `
struct Params {
    row_r: vec4<f32>,
    row_g: vec4<f32>,
    row_b: vec4<f32>,
    row_a: vec4<f32>,
    bias: vec4<f32>,
    count: u32,
    stride: u32,
    pad0: u32,
    pad1: u32,
}

@group(0) @binding(0) var<uniform> params: Params;
@group(0) @binding(1) var<storage, read_write> pixels: array<vec4<f32>>;

@compute @workgroup_size(64)
fn main(@builtin(global_invocation_id) id: vec3<u32>) {
    let i = id.x + id.y * params.stride;
    if (i >= params.count) {
        return;
    }

    let p = pixels[i];
    var c = vec4<f32>(0.0, 0.0, 0.0, 0.0);
    if (p.w > 0.0) {
        c = vec4<f32>(p.xyz / p.w, p.w);
    }

    let a = dot(params.row_a, c) + params.bias.w;
    if (a <= 0.0) {
        pixels[i] = vec4<f32>(0.0, 0.0, 0.0, 0.0);
        return;
    }
    let r = dot(params.row_r, c) + params.bias.x;
    let g = dot(params.row_g, c) + params.bias.y;
    let b = dot(params.row_b, c) + params.bias.z;
    pixels[i] = vec4<f32>(r * a, g * a, b * a, a);
}
`
