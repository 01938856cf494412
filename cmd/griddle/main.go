// Command griddle is the terminal client: solo play against the word
// oracle, or a head-to-head match through a relay server.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"griddle/internal/game"
	"griddle/internal/protocol"
	"griddle/internal/session"
	"griddle/internal/words"
)

func main() {
	_ = godotenv.Load()
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.WarnLevel)

	var (
		serverURL = flag.String("server", "http://localhost:8080", "relay server base URL")
		name      = flag.String("name", "Player", "display name shown to the opponent")
		create    = flag.Bool("create", false, "create a room and wait for an opponent")
		join      = flag.String("join", "", "join an existing room by key")
		timer     = flag.Int("timer", 300, "countdown budget in seconds")
		localOnly = flag.Bool("local", false, "use only the embedded word list")
	)
	flag.Parse()

	oracle := buildOracle(*localOnly)

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(sigCtx)
	defer cancel()

	sess, err := buildSession(ctx, oracle, *serverURL, *name, *create, *join, *timer)
	if err != nil {
		log.Fatal().Err(err).Msg("starting session")
	}

	runErr := make(chan error, 1)
	go func() { runErr <- sess.Run(ctx) }()
	go renderLoop(sess)

	printHelp(sess.Mode())
	readInput(ctx, sess)

	sess.Leave(context.Background())
	cancel()
	if err := <-runErr; err != nil && sigCtx.Err() == nil {
		log.Debug().Err(err).Msg("session ended")
	}
}

func buildOracle(localOnly bool) words.Oracle {
	local := words.NewLocalList()
	if localOnly {
		return local
	}
	return words.WithFallback(words.NewHTTPOracle(), local)
}

func buildSession(ctx context.Context, oracle words.Oracle, serverURL, name string, create bool, join string, timer int) (*session.Session, error) {
	if !create && join == "" {
		return session.NewSolo(oracle, timer), nil
	}
	relay, err := session.Dial(ctx, wsURL(serverURL))
	if err != nil {
		return nil, err
	}
	if create {
		return session.NewHosting(oracle, relay, name, timer), nil
	}
	return session.NewJoined(oracle, relay, name, strings.ToUpper(strings.TrimSpace(join))), nil
}

// wsURL turns the HTTP base URL into the relay's websocket endpoint.
func wsURL(base string) string {
	u := strings.TrimSuffix(base, "/")
	u = strings.Replace(u, "https://", "wss://", 1)
	u = strings.Replace(u, "http://", "ws://", 1)
	return u + "/ws"
}

func printHelp(mode session.Mode) {
	fmt.Println("Griddle — guess the five-letter word in six tries.")
	fmt.Println("Type a word and press enter to guess.")
	fmt.Println("Commands: :hint  :rematch  :quit")
	if mode == session.ModeHosting {
		fmt.Println("Waiting for an opponent to join...")
	}
}

// readInput drives the session from stdin until quit or EOF. A plain line
// is a guess; colon-prefixed lines are commands.
func readInput(ctx context.Context, sess *session.Session) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == ":quit" || line == ":q":
			return
		case line == ":hint":
			if sess.RequestHint() {
				fmt.Println("Take a hint? It reveals two letters. (:y / :n)")
			} else {
				fmt.Println("No hint available right now.")
			}
		case line == ":y":
			sess.ConfirmHint(ctx, true)
			fmt.Println("Revealing...")
		case line == ":n":
			sess.ConfirmHint(ctx, false)
		case line == ":rematch":
			sess.RequestRematch(ctx)
		case strings.HasPrefix(line, ":"):
			fmt.Printf("Unknown command %q\n", line)
		default:
			typeGuess(ctx, sess, line)
		}
	}
}

// typeGuess replays a line as individual key presses so the match applies
// its own composition rules, then submits.
func typeGuess(ctx context.Context, sess *session.Session, line string) {
	m := sess.Match()
	if m == nil {
		fmt.Println("The round has not started yet.")
		return
	}
	for m.CurrentGuess() != "" {
		sess.HandleKey(ctx, "BACKSPACE")
	}
	for _, ch := range strings.ToUpper(line) {
		sess.HandleKey(ctx, string(ch))
	}
	sess.HandleKey(ctx, "ENTER")
}

// renderLoop prints the session's notices as they arrive.
func renderLoop(sess *session.Session) {
	for n := range sess.Notices() {
		switch n.Kind {
		case session.NoticeRoomCreated:
			fmt.Printf("Room created. Share this key: %s\n", n.RoomKey)
		case session.NoticePlayerJoined:
			fmt.Printf("%s joined the room.\n", n.Name)
		case session.NoticeRoomJoined:
			fmt.Printf("Joined %s's room.\n", n.Name)
		case session.NoticeGameStarted:
			fmt.Printf("\nGame on! %d seconds on the clock.\n", n.Seconds)
		case session.NoticeGuessResult:
			printBoard(sess.Match())
		case session.NoticeOpponentProgress:
			fmt.Printf("Opponent: row %d, %d letters placed.\n", n.Snap.GuessCount, n.Snap.CorrectCharacterCount)
		case session.NoticeOpponentHint:
			fmt.Println("Your opponent took a hint.")
		case session.NoticeHintRevealed:
			fmt.Printf("Hint: %s\n", n.Hint)
		case session.NoticeTick:
			if n.Seconds > 0 && (n.Seconds <= 10 || n.Seconds%60 == 0) {
				fmt.Printf("%d seconds left.\n", n.Seconds)
			}
		case session.NoticeGameOver:
			printOutcome(sess, n)
		case session.NoticeRematch:
			fmt.Println("Rematch! Dealing a new word...")
		case session.NoticePlayerLeft:
			fmt.Printf("%s left the room.\n", n.Name)
		case session.NoticeRoomFull:
			fmt.Println("That room already has two players.")
		case session.NoticeError:
			fmt.Println(n.Message)
		}
	}
}

func printOutcome(sess *session.Session, n session.Notice) {
	fmt.Println(outcomeLine(sess.Name(), sess.Mode(), n.Outcome))
	if m := sess.Match(); m != nil && m.Outcome() != game.OutcomeWon {
		fmt.Printf("The word was %s.\n", m.Word())
	}
	fmt.Println("Type :rematch to play again, :quit to exit.")
}

// outcomeLine picks the result line from the reported reason. Solo losses
// carry an empty winner name, so the reason decides, never the name.
func outcomeLine(name string, mode session.Mode, o protocol.OutcomeDescriptor) string {
	switch {
	case o.Reason == protocol.ReasonDraw:
		return "Time! Nobody solved it. A draw."
	case o.Reason == protocol.ReasonSolved && (mode == session.ModeSolo || o.WinnerName == name):
		return "You solved it!"
	case mode == session.ModeSolo && o.Reason == protocol.ReasonTimeout:
		return "Time's up."
	case mode == session.ModeSolo:
		return "Out of guesses."
	default:
		return fmt.Sprintf("%s wins (%s).", o.WinnerName, o.Reason)
	}
}

// printBoard renders the guess history with per-letter verdicts and the
// keyboard's best-known status for each used letter.
func printBoard(m *game.Match) {
	if m == nil {
		return
	}
	history := m.History()
	for _, res := range history {
		var row strings.Builder
		for i, v := range res.Verdicts {
			switch v {
			case game.VerdictExact:
				row.WriteString("[" + string(res.Word[i]) + "]")
			case game.VerdictPresent:
				row.WriteString("(" + string(res.Word[i]) + ")")
			default:
				row.WriteString(" " + string(res.Word[i]) + " ")
			}
		}
		fmt.Println(row.String())
	}
	fmt.Printf("%d of %d rows used.\n", len(history), game.MaxGuesses)
	printKeyboard(history)
}

func printKeyboard(history []game.GuessResult) {
	kb := game.Keyboard(history)
	if len(kb) == 0 {
		return
	}
	letters := make([]rune, 0, len(kb))
	for r := range kb {
		letters = append(letters, r)
	}
	sort.Slice(letters, func(i, j int) bool { return letters[i] < letters[j] })

	var line strings.Builder
	line.WriteString("Used: ")
	for _, r := range letters {
		switch kb[r] {
		case game.LetterExact:
			line.WriteString("[" + string(r) + "] ")
		case game.LetterPresent:
			line.WriteString("(" + string(r) + ") ")
		default:
			line.WriteString(string(r) + "  ")
		}
	}
	fmt.Println(line.String())
}
