package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// CommandKind 输入命令类型
type CommandKind int

const (
	CmdCreate CommandKind = iota
	CmdJoin
	CmdLeave
	CmdRoll
	CmdMove
	CmdReset
	CmdHelp
	CmdQuit
)

// Command 解析后的输入命令
type Command struct {
	Kind       CommandKind
	RoomID     string
	MaxPlayers int
	Index      int
	Position   *int // 可选，作为 tokenData.position 发送
}

var (
	ErrNotCommand     = errors.New("命令需要以 / 开头，输入 /help 查看帮助")
	ErrUnknownCommand = errors.New("未知命令，输入 /help 查看帮助")
)

// HelpLines 命令帮助
var HelpLines = []string{
	"/create <房间号> <人数>  创建房间 (2-4 人)",
	"/join <房间号>           加入房间",
	"/roll                    掷骰子",
	"/move <棋子> [位置]      移动棋子",
	"/reset <棋子> [位置]     棋子回到起点",
	"/leave                   离开房间",
	"/quit                    退出",
}

// ParseCommand 解析一行输入
func ParseCommand(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return Command{}, ErrNotCommand
	}

	name, args := strings.ToLower(fields[0]), fields[1:]
	switch name {
	case "/create", "/c":
		if len(args) != 2 {
			return Command{}, usage("/create <房间号> <人数>")
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return Command{}, usage("/create <房间号> <人数>")
		}
		return Command{Kind: CmdCreate, RoomID: args[0], MaxPlayers: n}, nil

	case "/join", "/j":
		if len(args) != 1 {
			return Command{}, usage("/join <房间号>")
		}
		return Command{Kind: CmdJoin, RoomID: args[0]}, nil

	case "/roll", "/r":
		return Command{Kind: CmdRoll}, nil

	case "/move", "/m":
		return parseTokenCommand(CmdMove, "/move <棋子> [位置]", args)

	case "/reset":
		return parseTokenCommand(CmdReset, "/reset <棋子> [位置]", args)

	case "/leave", "/l":
		return Command{Kind: CmdLeave}, nil

	case "/help", "/h", "/?":
		return Command{Kind: CmdHelp}, nil

	case "/quit", "/q", "/exit":
		return Command{Kind: CmdQuit}, nil
	}

	return Command{}, ErrUnknownCommand
}

func parseTokenCommand(kind CommandKind, form string, args []string) (Command, error) {
	if len(args) < 1 || len(args) > 2 {
		return Command{}, usage(form)
	}
	idx, err := strconv.Atoi(args[0])
	if err != nil || idx < 0 {
		return Command{}, usage(form)
	}

	cmd := Command{Kind: kind, Index: idx}
	if len(args) == 2 {
		pos, err := strconv.Atoi(args[1])
		if err != nil {
			return Command{}, usage(form)
		}
		cmd.Position = &pos
	}
	return cmd, nil
}

func usage(form string) error {
	return fmt.Errorf("用法: %s", form)
}
