package opcode

// Builtin describes a built-in function: the number of arguments it takes
// and the single instruction it compiles to.
type Builtin struct {
	Arity int
	Op    Opcode
}

// Builtins is the predefined function table. Built-ins live in their own
// namespace, disjoint from user-defined functions; the semantic analyzer
// checks their arity inline and the code generator emits the opcode
// directly instead of a call.
var Builtins = map[string]Builtin{
	"write":    {Arity: 1, Op: WRT},
	"exit":     {Arity: 1, Op: EXT},
	"append":   {Arity: 2, Op: APD},
	"pop":      {Arity: 2, Op: LPP},
	"length":   {Arity: 1, Op: LEN},
	"copy":     {Arity: 1, Op: CPY},
	"type":     {Arity: 1, Op: TYP},
	"set":      {Arity: 3, Op: SET},
	"fopen":    {Arity: 2, Op: FOP},
	"fwrite":   {Arity: 2, Op: FWT},
	"fread":    {Arity: 1, Op: FRD},
	"readline": {Arity: 1, Op: FRL},
	"fclose":   {Arity: 1, Op: FCL},
}
