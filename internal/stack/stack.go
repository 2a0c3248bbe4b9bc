// Package stack tracks the lexically enclosing entities of the node being
// visited, innermost on top, together with the tails of every owner's access
// and invocation chains.
package stack

import "github.com/phobologic/cppfacts/internal/model"

// Stack is the context stack of one analysis run. It is not safe for
// concurrent use.
type Stack struct {
	m      *model.Model
	frames []model.EntityID

	lastAccess     map[model.EntityID]model.AssocID
	lastInvocation map[model.EntityID]model.AssocID
}

// New returns an empty stack over m.
func New(m *model.Model) *Stack {
	return &Stack{
		m:              m,
		lastAccess:     make(map[model.EntityID]model.AssocID),
		lastInvocation: make(map[model.EntityID]model.AssocID),
	}
}

// Push makes id the innermost enclosing entity.
func (s *Stack) Push(id model.EntityID) {
	s.frames = append(s.frames, id)
}

// Pop removes and returns the innermost entity, or NoEntity when empty.
func (s *Stack) Pop() model.EntityID {
	if len(s.frames) == 0 {
		return model.NoEntity
	}
	top := s.frames[len(s.frames)-1]
	s.frames = s.frames[:len(s.frames)-1]
	return top
}

// Depth returns the number of frames.
func (s *Stack) Depth() int {
	return len(s.frames)
}

// Truncate pops frames until Depth is at most depth.
func (s *Stack) Truncate(depth int) {
	if depth >= 0 && depth < len(s.frames) {
		s.frames = s.frames[:depth]
	}
}

// Top returns the innermost entity, or NoEntity when empty.
func (s *Stack) Top() model.EntityID {
	return s.find(func(model.Kind) bool { return true })
}

// TopBehavioural returns the innermost function or method.
func (s *Stack) TopBehavioural() model.EntityID {
	return s.find(model.Kind.IsBehavioural)
}

// TopType returns the innermost type.
func (s *Stack) TopType() model.EntityID {
	return s.find(model.Kind.IsType)
}

// TopNamespace returns the innermost namespace or package.
func (s *Stack) TopNamespace() model.EntityID {
	return s.find(model.Kind.IsScoping)
}

func (s *Stack) find(match func(model.Kind) bool) model.EntityID {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if match(s.m.KindOf(s.frames[i])) {
			return s.frames[i]
		}
	}
	return model.NoEntity
}

// LastAccess returns the tail of owner's access chain.
func (s *Stack) LastAccess(owner model.EntityID) model.AssocID {
	if id, ok := s.lastAccess[owner]; ok {
		return id
	}
	return model.NoAssoc
}

// SetLastAccess moves the tail of owner's access chain.
func (s *Stack) SetLastAccess(owner model.EntityID, id model.AssocID) {
	s.lastAccess[owner] = id
}

// LastInvocation returns the tail of owner's invocation chain.
func (s *Stack) LastInvocation(owner model.EntityID) model.AssocID {
	if id, ok := s.lastInvocation[owner]; ok {
		return id
	}
	return model.NoAssoc
}

// SetLastInvocation moves the tail of owner's invocation chain.
func (s *Stack) SetLastInvocation(owner model.EntityID, id model.AssocID) {
	s.lastInvocation[owner] = id
}
