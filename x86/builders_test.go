package x86

import (
	"testing"

	"github.com/colorfulnotion/rtsimd/emit"
	"github.com/colorfulnotion/rtsimd/operand"
	"github.com/stretchr/testify/assert"
)

func TestRex(t *testing.T) {
	assert.Equal(t, byte(0x40), rex(false, 0, 0, 0))
	assert.Equal(t, byte(0x48), rex(true, 0, 0, 0))
	assert.Equal(t, byte(0x49), rex(true, 0, 0, 1))
	assert.Equal(t, byte(0x44), rex(false, 1, 0, 0))
	assert.Equal(t, byte(0x4F), rex(true, 1, 1, 1))
}

func TestModRMAndSIB(t *testing.T) {
	assert.Equal(t, byte(0xCA), modrm(X86_MOD_REGISTER, 1, 2))
	assert.Equal(t, byte(0x4D), modrm(X86_MOD_INDIRECT_DISP8, 1, 5))
	assert.Equal(t, byte(0x24), sib(0, 4, 4))
	assert.Equal(t, byte(0x08), sib(0, 1, 0))
}

func TestVexPrefix(t *testing.T) {
	tests := []struct {
		name string
		got  []byte
		want []byte
	}{
		{"two byte", vex(false, false, pp66, map0F, 0, 0, 0, 2), []byte{0xC5, 0xE9}},
		{"two byte 256", vex(false, true, pp66, map0F, 0, 0, 0, 2), []byte{0xC5, 0xED}},
		{"extended rm", vex(false, false, pp66, map0F, 0, 0, 1, 2), []byte{0xC4, 0xC1, 0x69}},
		{"map 0f3a", vex(false, true, pp66, map0F3A, 0, 0, 0, 1), []byte{0xC4, 0xE3, 0x75}},
		{"w1", vex(true, false, pp66, map0F38, 0, 0, 0, 0), []byte{0xC4, 0xE2, 0xF9}},
		{"extended reg", vex(false, false, ppNone, map0F, 1, 0, 0, 0), []byte{0xC5, 0x78}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.got)
		})
	}
}

func TestEncodeRM(t *testing.T) {
	tests := []struct {
		name string
		x    rm
		want []byte
	}{
		{"register", reg(2), []byte{0xCA}},
		{"rax", mem(operand.M(operand.Reax, operand.DV(0))), []byte{0x08}},
		{"rbp zero disp8", mem(operand.M(operand.Rebp, operand.DV(0))), []byte{0x4D, 0x00}},
		{"r13 zero disp8", mem(operand.M(operand.Reg13, operand.DV(0))), []byte{0x4D, 0x00}},
		{"rsp sib", mem(operand.M(operand.Resp, operand.DV(0))), []byte{0x0C, 0x24}},
		{"r12 sib disp8", mem(operand.M(operand.Reg12, operand.DV(0x40))), []byte{0x4C, 0x24, 0x40}},
		{"disp8 edge", mem(operand.M(operand.Reax, operand.DV(0x7C))), []byte{0x48, 0x7C}},
		{"disp32", mem(operand.M(operand.Reax, operand.DV(0x80))), []byte{0x88, 0x80, 0x00, 0x00, 0x00}},
		{"disp32 top", mem(operand.M(operand.Resi, operand.DV(0x7FFFFFFC))), []byte{0x8E, 0xFC, 0xFF, 0xFF, 0x7F}},
		{"indexed", mem(operand.MI(operand.Reax, operand.Recx, operand.DV(0x10))), []byte{0x4C, 0x08, 0x10}},
		{"indexed zero", mem(operand.MI(operand.Rebx, operand.Redx, operand.DV(0))), []byte{0x0C, 0x13}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			buf := emit.NewBuffer()
			encodeRM(buf, 1, tc.x)
			assert.Equal(t, tc.want, buf.Bytes())
		})
	}
}

func TestRMExtensionBits(t *testing.T) {
	x, b := mem(operand.MI(operand.Reg13, operand.Reg09, operand.DV(0))).xb()
	assert.Equal(t, byte(1), x)
	assert.Equal(t, byte(1), b)
	x, b = reg(15).xb()
	assert.Equal(t, byte(0), x)
	assert.Equal(t, byte(1), b)
}

func TestRMLenMatchesEncoder(t *testing.T) {
	for _, m := range []operand.Mem{
		operand.M(operand.Reax, operand.DV(0)),
		operand.M(operand.Rebp, operand.DV(0)),
		operand.M(operand.Resp, operand.DV(0x40)),
		operand.M(operand.Reg12, operand.DV(0x1000)),
		operand.MI(operand.Reax, operand.Recx, operand.DV(0x10)),
	} {
		buf := emit.NewBuffer()
		encodeRM(buf, 3, mem(m))
		n, ok := rmLen(buf.Bytes())
		assert.True(t, ok)
		assert.Equal(t, buf.Len(), n, m.String())
	}
}
