package matching

import (
	"context"

	"github.com/LondonVandervort/PrivacyDating/internal/fhe"
	"github.com/LondonVandervort/PrivacyDating/internal/server/profiles"
)

// Scoring weights. The total stays within [0,100].
const (
	ageWeight       = 30
	locationWeight  = 40
	interestsWeight = 30
	maxAgeGap       = 5
)

// scoreOps chains homomorphic calls and carries the first error, so the
// scoring formula below reads as straight-line arithmetic. Every produced
// handle is granted to the engine immediately; without the grant the next
// operation in the chain would fail.
type scoreOps struct {
	ctx context.Context
	cop fhe.Coprocessor
	err error
}

func (o *scoreOps) grant(h fhe.Handle, err error) fhe.Handle {
	if o.err != nil {
		return ""
	}
	if err != nil {
		o.err = err
		return ""
	}
	if err := o.cop.GrantSelf(o.ctx, h); err != nil {
		o.err = err
		return ""
	}
	return h
}

func (o *scoreOps) enc(v uint8) fhe.Handle {
	if o.err != nil {
		return ""
	}
	return o.grant(o.cop.Encrypt(o.ctx, v))
}

func (o *scoreOps) add(a, b fhe.Handle) fhe.Handle {
	if o.err != nil {
		return ""
	}
	return o.grant(o.cop.Add(o.ctx, a, b))
}

func (o *scoreOps) sub(a, b fhe.Handle) fhe.Handle {
	if o.err != nil {
		return ""
	}
	return o.grant(o.cop.Sub(o.ctx, a, b))
}

func (o *scoreOps) eq(a, b fhe.Handle) fhe.Handle {
	if o.err != nil {
		return ""
	}
	return o.grant(o.cop.Eq(o.ctx, a, b))
}

func (o *scoreOps) le(a, b fhe.Handle) fhe.Handle {
	if o.err != nil {
		return ""
	}
	return o.grant(o.cop.Le(o.ctx, a, b))
}

func (o *scoreOps) sel(cond, a, b fhe.Handle) fhe.Handle {
	if o.err != nil {
		return ""
	}
	return o.grant(o.cop.Select(o.ctx, cond, a, b))
}

// ComputeScore derives the encrypted compatibility score for two profiles:
// 30 points for ages within maxAgeGap years, 40 for matching locations, 30
// for matching interests.
//
// The computation is a pure chain of homomorphic calls with no
// data-dependent control flow: nothing here ever branches on a plaintext
// derived from either profile, so the execution trace reveals nothing about
// the inputs.
//
// The age check is symmetric. Subtraction wraps on the 8-bit domain, so
// exactly one of ageA-ageB and ageB-ageA is the true distance whenever the
// ages differ; taking "either difference <= gap" via select yields
// |ageA-ageB| <= gap without decrypting anything.
func ComputeScore(ctx context.Context, cop fhe.Coprocessor, a, b *profiles.Profile) (fhe.Handle, error) {
	o := &scoreOps{ctx: ctx, cop: cop}

	gap := o.enc(maxAgeGap)
	truth := o.enc(1)

	closeAB := o.le(o.sub(a.EncryptedAge, b.EncryptedAge), gap)
	closeBA := o.le(o.sub(b.EncryptedAge, a.EncryptedAge), gap)
	ageClose := o.sel(closeAB, truth, closeBA)

	locMatch := o.eq(a.EncryptedLocation, b.EncryptedLocation)
	intMatch := o.eq(a.EncryptedInterests, b.EncryptedInterests)

	zero := o.enc(0)
	agePart := o.sel(ageClose, o.enc(ageWeight), zero)
	locPart := o.sel(locMatch, o.enc(locationWeight), zero)
	intPart := o.sel(intMatch, o.enc(interestsWeight), zero)

	score := o.add(o.add(agePart, locPart), intPart)
	if o.err != nil {
		return "", o.err
	}
	return score, nil
}
