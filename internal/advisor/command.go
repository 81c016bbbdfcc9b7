package advisor

import "strings"

// CommandKind identifies what the model asked the bot to do.
type CommandKind int

// The closed set of commands a model reply can carry. Anything that is not
// a recognized command is a plain conversational reply.
const (
	KindSay CommandKind = iota
	KindShowModel
	KindShowCatalog
	KindAskGender
	KindAskType
)

// Command is the parsed form of a model reply: a kind plus its payload.
// For KindSay, Arg is the full reply text; for the others it is the command
// argument (product code, category name, or gender).
type Command struct {
	Kind CommandKind
	Arg  string
}

const (
	showModelPrefix   = "MOSTRAR_MODELO:"
	showCatalogPrefix = "MOSTRAR_CATALOGO:"
	askGenderLiteral  = "PEDIR_CATALOGO"
	askTypePrefix     = "PREGUNTAR_TIPO:"
)

// ParseReply turns the raw model reply into a Command. Prefixes are checked
// in order on the raw string, matching the reply protocol the system prompt
// instructs the model to use.
func ParseReply(reply string) Command {
	switch {
	case strings.HasPrefix(reply, showModelPrefix):
		return Command{Kind: KindShowModel, Arg: argOf(reply, showModelPrefix)}
	case strings.HasPrefix(reply, showCatalogPrefix):
		return Command{Kind: KindShowCatalog, Arg: argOf(reply, showCatalogPrefix)}
	case reply == askGenderLiteral:
		return Command{Kind: KindAskGender}
	case strings.HasPrefix(reply, askTypePrefix):
		return Command{Kind: KindAskType, Arg: strings.ToUpper(argOf(reply, askTypePrefix))}
	default:
		return Command{Kind: KindSay, Arg: reply}
	}
}

func argOf(reply, prefix string) string {
	return strings.TrimSpace(strings.TrimPrefix(reply, prefix))
}
