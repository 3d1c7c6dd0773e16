package engine

// Shader sources for the plot renderer. All stages target GLSL 4.10 core.

// Program names handed to Device.CreateProgram.
const (
	ProgramGeometry  = "wboit-geometry"
	ProgramComposite = "wboit-composite"
	ProgramOpaque    = "opaque-geometry"
)

// Vertex shader shared by the accumulation and opaque programs. The rotated
// position is scaled so the shorter viewport side spans [-1, 1], Y is flipped
// to match texture space and Z is negated so nearer points get smaller depth.
const geometryVertexShader = `
#version 410 core
layout (location = 0) in vec3 Position;
layout (location = 1) in vec4 Color;

uniform mat4 u_Rotation;
uniform vec2 u_ViewportSize;

out vec4 Frag_Color;
out float Frag_Depth;

void main() {
    vec4 rotated = u_Rotation * vec4(Position, 1.0);

    float min_dim = min(u_ViewportSize.x, u_ViewportSize.y);
    vec2 scale = vec2(min_dim / u_ViewportSize.x, min_dim / u_ViewportSize.y);

    gl_Position = vec4(rotated.x * scale.x, -rotated.y * scale.y, -rotated.z, 1.0);
    Frag_Color = Color;
    Frag_Depth = gl_Position.z;
}
`

// Fragment shader of the accumulation pass
const accumulateFragmentShader = `
#version 410 core
in vec4 Frag_Color;
in float Frag_Depth;

// x: scale, y: epsilon, z: depth range, w: exponent
uniform vec4 u_Weight;
// x: min, y: max
uniform vec2 u_WeightClamp;

layout (location = 0) out vec4 Accum;
layout (location = 1) out float Reveal;

void main() {
    float z = (Frag_Depth + 1.0) * 0.5;
    float weight = Frag_Color.a *
        clamp(u_Weight.x / (u_Weight.y + pow(z / u_Weight.z, u_Weight.w)),
              u_WeightClamp.x, u_WeightClamp.y);

    Accum = vec4(Frag_Color.rgb * weight, weight);
    Reveal = Frag_Color.a;
}
`

// Fragment shader of the single-pass variant
const opaqueFragmentShader = `
#version 410 core
in vec4 Frag_Color;
in float Frag_Depth;

out vec4 FragColor;

void main() {
    FragColor = Frag_Color;
}
`

// Vertex shader for the composite quad
const compositeVertexShader = `
#version 410 core
layout (location = 0) in vec2 Position;
layout (location = 1) in vec2 UV;

uniform float u_QuadScale;

out vec2 Frag_UV;

void main() {
    Frag_UV = UV;
    gl_Position = vec4(Position * u_QuadScale, 0.0, 1.0);
}
`

// Fragment shader resolving accum/reveal into the color texture
const compositeFragmentShader = `
#version 410 core
in vec2 Frag_UV;

uniform sampler2D u_AccumTexture;
uniform sampler2D u_RevealTexture;
uniform float u_MinAccum;

out vec4 FragColor;

void main() {
    vec4 accum = texture(u_AccumTexture, Frag_UV);
    float reveal = texture(u_RevealTexture, Frag_UV).r;

    // Nothing was drawn here
    if (accum.a < u_MinAccum)
        discard;

    FragColor = vec4(accum.rgb / accum.a, sqrt(clamp(reveal, 0.0, 1.0)));
}
`
