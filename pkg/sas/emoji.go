package sas

// SasBytes is the short authentication string shared by both sides.
type SasBytes [BytesLength]byte

// Emoji is one entry of the verification emoji table.
type Emoji struct {
	Symbol      string
	Description string
}

// EmojiIndices splits the first 42 bits into seven indices into the emoji
// table, most significant first.
func (b SasBytes) EmojiIndices() [7]uint8 {
	var n uint64
	for _, c := range b {
		n = n<<8 | uint64(c)
	}
	var out [7]uint8
	for i := range out {
		out[i] = uint8((n >> (42 - 6*uint(i))) & 0x3F)
	}
	return out
}

// Emojis maps EmojiIndices onto the emoji table.
func (b SasBytes) Emojis() [7]Emoji {
	var out [7]Emoji
	for i, idx := range b.EmojiIndices() {
		out[i] = emojiTable[idx]
	}
	return out
}

// Decimals splits the first 39 bits into three 13-bit numbers, each offset
// by 1000 so that all of them have four digits.
func (b SasBytes) Decimals() [3]uint16 {
	return [3]uint16{
		(uint16(b[0])<<5 | uint16(b[1])>>3) + 1000,
		(uint16(b[1]&0x07)<<10 | uint16(b[2])<<2 | uint16(b[3])>>6) + 1000,
		(uint16(b[3]&0x3F)<<7 | uint16(b[4])>>1) + 1000,
	}
}

var emojiTable = [64]Emoji{
	{"🐶", "Dog"},
	{"🐱", "Cat"},
	{"🦁", "Lion"},
	{"🐎", "Horse"},
	{"🦄", "Unicorn"},
	{"🐷", "Pig"},
	{"🐘", "Elephant"},
	{"🐰", "Rabbit"},
	{"🐼", "Panda"},
	{"🐓", "Rooster"},
	{"🐧", "Penguin"},
	{"🐢", "Turtle"},
	{"🐟", "Fish"},
	{"🐙", "Octopus"},
	{"🦋", "Butterfly"},
	{"🌷", "Flower"},
	{"🌳", "Tree"},
	{"🌵", "Cactus"},
	{"🍄", "Mushroom"},
	{"🌏", "Globe"},
	{"🌙", "Moon"},
	{"☁️", "Cloud"},
	{"🔥", "Fire"},
	{"🍌", "Banana"},
	{"🍎", "Apple"},
	{"🍓", "Strawberry"},
	{"🌽", "Corn"},
	{"🍕", "Pizza"},
	{"🎂", "Cake"},
	{"❤️", "Heart"},
	{"😀", "Smiley"},
	{"🤖", "Robot"},
	{"🎩", "Hat"},
	{"👓", "Glasses"},
	{"🔧", "Spanner"},
	{"🎅", "Santa"},
	{"👍", "Thumbs Up"},
	{"☂️", "Umbrella"},
	{"⌛", "Hourglass"},
	{"⏰", "Clock"},
	{"🎁", "Gift"},
	{"💡", "Light Bulb"},
	{"📕", "Book"},
	{"✏️", "Pencil"},
	{"📎", "Paperclip"},
	{"✂️", "Scissors"},
	{"🔒", "Lock"},
	{"🔑", "Key"},
	{"🔨", "Hammer"},
	{"☎️", "Telephone"},
	{"🏁", "Flag"},
	{"🚂", "Train"},
	{"🚲", "Bicycle"},
	{"✈️", "Aeroplane"},
	{"🚀", "Rocket"},
	{"🏆", "Trophy"},
	{"⚽", "Ball"},
	{"🎸", "Guitar"},
	{"🎺", "Trumpet"},
	{"🔔", "Bell"},
	{"⚓", "Anchor"},
	{"🎧", "Headphones"},
	{"📁", "Folder"},
	{"📌", "Pin"},
}
