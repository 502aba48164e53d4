// Package shaders embeds the GLSL programs used to present frames.
//
// Each program is a pair of files sharing a name: <name>.vert and
// <name>.frag. Both receive the frame geometry in the uvec4 uniform
// "geometry" and the frame texture in the sampler "frame".
package shaders

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"

	"github.com/go-gl/gl/v3.3-core/gl"
)

//go:embed *.vert *.frag
var dir embed.FS

const DefaultName = "Passthrough"

// Names returns the sorted names of all embedded programs.
func Names() []string {
	dirents, err := dir.ReadDir(".")
	if err != nil {
		panic(err)
	}

	var names []string
	for _, dirent := range dirents {
		name := strings.TrimSuffix(dirent.Name(), path.Ext(dirent.Name()))
		if !slices.Contains(names, name) {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// Exists reports whether a program with that name is embedded.
func Exists(name string) bool {
	return slices.Contains(Names(), name)
}

// Program compiles and links the named program.
func Program(name string) (uint32, error) {
	vert, err := compile(name+".vert", gl.VERTEX_SHADER)
	if err != nil {
		return 0, fmt.Errorf("vertex shader %s: %w", name, err)
	}
	frag, err := compile(name+".frag", gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vert)
		return 0, fmt.Errorf("fragment shader %s: %w", name, err)
	}
	return link(vert, frag)
}

func compile(file string, typ uint32) (uint32, error) {
	buf, err := fs.ReadFile(dir, file)
	if err != nil {
		return 0, err
	}
	csrc, free := gl.Strs(string(buf) + "\x00")
	sh := gl.CreateShader(typ)
	gl.ShaderSource(sh, 1, csrc, nil)
	free()
	gl.CompileShader(sh)

	var status int32
	if gl.GetShaderiv(sh, gl.COMPILE_STATUS, &status); status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(sh, gl.INFO_LOG_LENGTH, &logLength)

		log := make([]byte, logLength+1)
		gl.GetShaderInfoLog(sh, logLength, nil, &log[0])
		gl.DeleteShader(sh)

		return 0, fmt.Errorf("compile error: %v", string(log))
	}

	return sh, nil
}

func link(vert, frag uint32) (uint32, error) {
	prg := gl.CreateProgram()
	gl.AttachShader(prg, vert)
	gl.AttachShader(prg, frag)
	gl.LinkProgram(prg)
	gl.DeleteShader(vert)
	gl.DeleteShader(frag)

	var status int32
	if gl.GetProgramiv(prg, gl.LINK_STATUS, &status); status == gl.FALSE {
		var logLength int32
		var glLog [256]byte
		gl.GetProgramInfoLog(prg, int32(len(glLog)), &logLength, &glLog[0])
		gl.DeleteProgram(prg)
		return 0, fmt.Errorf("program link error: %v", string(glLog[:logLength]))
	}

	return prg, nil
}
