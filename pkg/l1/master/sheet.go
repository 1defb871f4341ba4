package master

import (
	"context"
	"strings"
	"time"

	"github.com/golang/glog"
)

// Beat is one note of a sheet.
type Beat struct {
	Note     string
	Duration string
	// Token is the position among the sheet's whitespace separated tokens.
	Token int
}

// String returns the sheet notation.
func (b Beat) String() string {
	return b.Note + b.Duration
}

// ParseSheet splits a music sheet into beats. A beat is a two character
// token: the note then the duration, e.g. "Go" or "c.". Other tokens are
// skipped, so bar lines and comments may be mixed in.
func ParseSheet(text string) []Beat {
	var beats []Beat
	for n, tok := range strings.Fields(text) {
		if len(tok) != 2 {
			continue
		}
		beats = append(beats, Beat{Note: tok[:1], Duration: tok[1:], Token: n})
	}
	return beats
}

// Player plays beats on an Instrument.
type Player struct {
	Client     *Client
	Instrument *Instrument
	// OnBeat is called before each beat is played.
	OnBeat func(Beat)

	sleep func(context.Context, time.Duration) error
}

// NewPlayer creates a Player.
func NewPlayer(client *Client, inst *Instrument) *Player {
	return &Player{Client: client, Instrument: inst, sleep: sleepContext}
}

// Check validates all beats against the instrument.
func (p *Player) Check(beats []Beat) error {
	for _, b := range beats {
		if _, err := p.Instrument.Note(b.Note); err != nil {
			return &SheetError{Token: b.Token, Text: b.String(), Err: err}
		}
		if _, err := p.Instrument.Duration(b.Duration); err != nil {
			return &SheetError{Token: b.Token, Text: b.String(), Err: err}
		}
	}
	return nil
}

// Play plays the beats. Nothing is sent if any beat is invalid.
func (p *Player) Play(ctx context.Context, beats []Beat) error {
	if err := p.Check(beats); err != nil {
		return err
	}
	for _, b := range beats {
		if fn := p.OnBeat; fn != nil {
			fn(b)
		}
		glog.V(1).Infof("beat %s", b)
		if err := p.PlayNote(ctx, b.Note); err != nil {
			return err
		}
		d, _ := p.Instrument.Duration(b.Duration)
		if err := p.sleep(ctx, d); err != nil {
			return err
		}
	}
	return nil
}

// PlayNote positions the device of a note, waits for it to settle if
// it moved and strikes.
func (p *Player) PlayNote(ctx context.Context, name string) error {
	note, err := p.Instrument.Note(name)
	if err != nil {
		return err
	}
	moved := p.Client.Duty(note.Address) != note.Duty
	if err = p.Client.SetDuty(note.Address, note.Duty); err != nil {
		return err
	}
	if moved {
		if err = p.sleep(ctx, p.Instrument.Settle); err != nil {
			return err
		}
	}
	return p.Client.Strike(note.Address, p.Instrument.StrikeUnits)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
