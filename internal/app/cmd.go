package app

import "fmt"

// Command はアプリケーションの起動モードを表す。
type Command string

const (
	// CommandServe はAPIサーバーモードで起動することを示す。
	CommandServe Command = "serve"
	// CommandMigrate は未適用のマイグレーションをすべて適用することを示す。
	CommandMigrate Command = "migrate"
	// CommandMigrateDown は直近のマイグレーションを1つ戻すことを示す。
	CommandMigrateDown Command = "migrate down"
	// CommandHealthcheck はヘルスチェックを実行することを示す。
	// distroless環境でのDockerヘルスチェック用。
	CommandHealthcheck Command = "healthcheck"
)

// ParseCommand はコマンドライン引数からサブコマンドを解析する。
// 引数が空の場合はCommandServeを返し、サポート外のコマンドはエラーを返す。
func ParseCommand(args []string) (Command, error) {
	if len(args) == 0 {
		return CommandServe, nil
	}

	switch args[0] {
	case "serve":
		return CommandServe, nil
	case "migrate":
		if len(args) > 1 && args[1] == "down" {
			return CommandMigrateDown, nil
		}
		return CommandMigrate, nil
	case "healthcheck":
		return CommandHealthcheck, nil
	default:
		return "", fmt.Errorf("unknown command %q (available: serve, migrate, migrate down, healthcheck)", args[0])
	}
}
