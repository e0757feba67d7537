package game

import (
	"time"

	"github.com/ravenfell/server/internal/net"
	"github.com/ravenfell/server/internal/persist"
	"github.com/ravenfell/server/internal/scheduling"
	"github.com/ravenfell/server/internal/world"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var nameCaser = cases.Title(language.English)

// NormalizeCharacterName folds client-supplied character names to the
// canonical stored form.
func NormalizeCharacterName(raw string) string {
	return nameCaser.String(raw)
}

// LogInOperation authenticates an account and brings its character into the
// world. It runs elevated: it needs the durable records and the player
// factory, which ordinary operations never see.
type LogInOperation struct {
	scheduling.BaseOperation
	Session       *net.Session
	AccountName   string
	Password      string
	CharacterName string
}

func NewLogInOperation(sess *net.Session, account, password, character string) *LogInOperation {
	return &LogInOperation{
		BaseOperation: scheduling.NewBaseOperation(scheduling.KindLogIn, 0, nil, true),
		Session:       sess,
		AccountName:   account,
		Password:      password,
		CharacterName: NormalizeCharacterName(character),
	}
}

func (o *LogInOperation) Capability() scheduling.Capability { return scheduling.CapElevated }

func (o *LogInOperation) Execute(ctx scheduling.Context) scheduling.Result {
	ec := ctx.(*ElevatedContext)
	if o.Session == nil || o.Session.IsClosed() {
		return scheduling.Done()
	}

	row := o.authenticate(ec)
	if row == nil {
		return scheduling.Done()
	}
	if ec.World.PlayerByName(row.Name) != nil {
		o.reject(ec, "Character is already logged in.")
		return scheduling.Done()
	}

	p := &world.Player{
		Creature: world.Creature{
			ID:          world.NextCreatureID(),
			Name:        row.Name,
			Loc:         world.Location{X: row.X, Y: row.Y, MapID: row.MapID},
			Heading:     world.Direction(row.Heading),
			HP:          row.HP,
			MaxHP:       row.MaxHP,
			Level:       row.Level,
			Speed:       220,
			Attack:      row.Attack,
			Defense:     row.Defense,
			AttackSpeed: 2 * time.Second,
			Blood:       "red",
			Safety:      true,
		},
		Session:     o.Session,
		AccountName: o.AccountName,
		CharID:      row.ID,
	}
	if !ec.Map.CanWalkTo(p.Loc) {
		// Stored position turned unwalkable; nudge until something opens up.
		for _, d := range []world.Direction{world.North, world.East, world.South, world.West} {
			if alt := p.Loc.Step(d); ec.Map.CanWalkTo(alt) {
				p.Loc = alt
				break
			}
		}
	}
	ec.World.AddPlayer(p)
	o.Session.BindPlayer(p.ID)

	if ec.Accounts != nil {
		dbctx, cancel := ec.g.withDB()
		defer cancel()
		if err := ec.Accounts.SetOnline(dbctx, o.AccountName, true); err != nil {
			ec.Logger().Warn("mark account online", zap.String("account", o.AccountName), zap.Error(err))
		}
	}

	o.Session.Send(loginOKPayload(p))
	ec.Publish(NewNotification(TargetObserversOf(p.Loc), creatureNewPayload(&p.Creature)))
	ec.Logger().Info("player logged in",
		zap.String("character", p.Name),
		zap.Uint32("creature_id", p.ID),
		zap.String("addr", o.Session.IP))
	return scheduling.Done()
}

func (o *LogInOperation) authenticate(ec *ElevatedContext) *persist.CharacterRow {
	if ec.Accounts == nil || ec.Characters == nil {
		o.reject(ec, "Server is not accepting logins.")
		return nil
	}
	dbctx, cancel := ec.g.withDB()
	defer cancel()

	acct, err := ec.Accounts.Load(dbctx, o.AccountName)
	if err != nil {
		ec.Logger().Error("load account", zap.String("account", o.AccountName), zap.Error(err))
		o.reject(ec, "Temporary failure, try again.")
		return nil
	}
	if acct == nil || !ec.Accounts.VerifyPassword(acct, o.Password) {
		o.reject(ec, "Wrong account name or password.")
		return nil
	}
	if acct.Banned {
		o.reject(ec, "Account is banned.")
		return nil
	}
	row, err := ec.Characters.LoadByName(dbctx, o.CharacterName)
	if err != nil {
		ec.Logger().Error("load character", zap.String("character", o.CharacterName), zap.Error(err))
		o.reject(ec, "Temporary failure, try again.")
		return nil
	}
	if row == nil || row.AccountName != o.AccountName {
		o.reject(ec, "No such character on this account.")
		return nil
	}
	return row
}

func (o *LogInOperation) reject(ec *ElevatedContext, reason string) {
	o.Session.Send(loginErrorPayload(reason))
	o.Session.Close()
}

// LogOutOperation removes a player from the world and persists their
// character. In-combat players may not log out voluntarily; forced logouts
// (link loss, idle kick) always proceed.
type LogOutOperation struct {
	scheduling.BaseOperation
	Forced bool
}

func NewLogOutOperation(playerID uint32, forced bool) *LogOutOperation {
	return &LogOutOperation{
		BaseOperation: scheduling.NewBaseOperation(scheduling.KindLogOut, playerID, nil, !forced),
		Forced:        forced,
	}
}

func (o *LogOutOperation) Capability() scheduling.Capability { return scheduling.CapElevated }

func (o *LogOutOperation) Execute(ctx scheduling.Context) scheduling.Result {
	ec := ctx.(*ElevatedContext)
	p := ec.World.Player(o.RequestorID())
	if p == nil {
		return scheduling.Done()
	}
	p.Untrack(o)
	if !o.Forced && p.InCombat {
		ec.Message(p, MessageNotPossible)
		return scheduling.Done()
	}

	ec.g.CombatantTargetChanged(&p.Creature, 0)
	loc := p.Loc
	ec.World.RemovePlayer(p.ID)
	ec.Publish(NewNotification(TargetObserversOf(loc), creatureGonePayload(p.ID, loc)))

	if ec.Characters != nil {
		dbctx, cancel := ec.g.withDB()
		defer cancel()
		row := &persist.CharacterRow{
			ID:      p.CharID,
			Name:    p.Name,
			Level:   p.Level,
			HP:      p.HP,
			MaxHP:   p.MaxHP,
			Attack:  p.Attack,
			Defense: p.Defense,
			X:       p.Loc.X,
			Y:       p.Loc.Y,
			MapID:   p.Loc.MapID,
			Heading: int16(p.Heading),
		}
		if err := ec.Characters.Save(dbctx, row); err != nil {
			ec.Logger().Error("save character", zap.String("character", p.Name), zap.Error(err))
		}
		if ec.Accounts != nil {
			if err := ec.Accounts.SetOnline(dbctx, p.AccountName, false); err != nil {
				ec.Logger().Warn("mark account offline", zap.String("account", p.AccountName), zap.Error(err))
			}
		}
	}

	if p.Session != nil {
		p.Session.Close()
	}
	ec.Logger().Info("player logged out", zap.String("character", p.Name), zap.Bool("forced", o.Forced))
	return scheduling.Done()
}
