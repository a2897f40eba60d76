package webgpu

// WGSL compute shaders for buffer layout conversion.
// Using string constants instead of embed for simplicity.

// transposeTileSize is the workgroup tile edge for the transpose kernel.
const transposeTileSize = 16

// transpose2DShader transposes a 2D matrix of 4-byte elements. Operating on
// u32 lanes keeps the copy bit-exact for every 4-byte element type.
const transpose2DShader = `
@group(0) @binding(0) var<storage, read> input: array<u32>;
@group(0) @binding(1) var<storage, read_write> result: array<u32>;

struct Params {
    rows: u32,
    cols: u32,
}
@group(0) @binding(2) var<uniform> params: Params;

@compute @workgroup_size(16, 16)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let row = global_id.y;
    let col = global_id.x;

    if (row >= params.rows || col >= params.cols) {
        return;
    }

    let in_idx = row * params.cols + col;
    let out_idx = col * params.rows + row;
    result[out_idx] = input[in_idx];
}
`
