package proto

import "strconv"

// Protocol is a Minecraft protocol version number.
type Protocol int

// Protocol versions the proxy needs to tell apart.
const (
	Minecraft_1_7_2  Protocol = 4
	Minecraft_1_19   Protocol = 759
	Minecraft_1_19_1 Protocol = 760
	Minecraft_1_19_3 Protocol = 761
	Minecraft_1_20_2 Protocol = 764
	Minecraft_1_20_5 Protocol = 766
)

var names = map[Protocol]string{
	Minecraft_1_7_2:  "1.7.2",
	Minecraft_1_19:   "1.19",
	Minecraft_1_19_1: "1.19.1",
	Minecraft_1_19_3: "1.19.3",
	Minecraft_1_20_2: "1.20.2",
	Minecraft_1_20_5: "1.20.5",
}

// GreaterEqual is true when this protocol is greater or equal to v.
func (p Protocol) GreaterEqual(v Protocol) bool { return p >= v }

// Lower is true when this protocol is lower than v.
func (p Protocol) Lower(v Protocol) bool { return p < v }

func (p Protocol) String() string {
	if name, ok := names[p]; ok {
		return name
	}
	return strconv.Itoa(int(p))
}
