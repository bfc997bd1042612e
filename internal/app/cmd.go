package app

// Command representa o modo de arranque da aplicação.
type Command string

const (
	// CommandServe arranca o servidor da API.
	CommandServe Command = "serve"
	// CommandWorker arranca o modo worker (limpeza de sessões).
	CommandWorker Command = "worker"
	// CommandMigrate executa as migrações da base de dados.
	CommandMigrate Command = "migrate"
	// CommandHealthcheck executa a verificação de saúde.
	// Para o healthcheck do Docker em ambiente distroless.
	CommandHealthcheck Command = "healthcheck"
)

// ParseCommand interpreta o subcomando dos argumentos da linha de comandos.
// Sem argumentos ou com comando desconhecido devolve CommandServe.
func ParseCommand(args []string) Command {
	if len(args) == 0 {
		return CommandServe
	}

	switch args[0] {
	case "worker":
		return CommandWorker
	case "serve":
		return CommandServe
	case "migrate":
		return CommandMigrate
	case "healthcheck":
		return CommandHealthcheck
	default:
		return CommandServe
	}
}
