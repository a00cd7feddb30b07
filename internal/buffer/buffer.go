// Package buffer implementa o buffer limitado que conecta os workers do
// caminhão. Duas políticas de escrita convivem: Push descarta o item mais
// antigo quando não há espaço (telemetria de alta frequência) e PushWait
// bloqueia o produtor até o consumidor abrir espaço (dados que não podem
// ser perdidos).
package buffer

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTimeout indica que o tempo de espera por espaço se esgotou
var ErrTimeout = errors.New("tempo de espera esgotado")

// BoundedBuffer é um buffer FIFO de capacidade fixa, seguro para uso por
// múltiplos produtores e consumidores
type BoundedBuffer[T any] struct {
	mu sync.Mutex
	ch chan T
}

// New cria um buffer com a capacidade informada. Capacidades menores que
// um são coagidas para um.
func New[T any](capacity int) *BoundedBuffer[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &BoundedBuffer[T]{
		ch: make(chan T, capacity),
	}
}

// Push insere o item sem bloquear. Com o buffer cheio, descarta o item
// mais antigo até abrir espaço.
func (b *BoundedBuffer[T]) Push(item T) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for {
		select {
		case b.ch <- item:
			return
		default:
		}

		// Cheio: descarta o mais antigo e tenta de novo
		select {
		case <-b.ch:
		default:
		}
	}
}

// PushWait insere o item, bloqueando até haver espaço ou o contexto ser
// cancelado
func (b *BoundedBuffer[T]) PushWait(ctx context.Context, item T) error {
	select {
	case b.ch <- item:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PushWaitTimeout insere o item, bloqueando até haver espaço, o tempo
// limite estourar ou o contexto ser cancelado
func (b *BoundedBuffer[T]) PushWaitTimeout(ctx context.Context, item T, timeout time.Duration) error {
	select {
	case b.ch <- item:
		return nil
	default:
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case b.ch <- item:
		return nil
	case <-timer.C:
		return ErrTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryPop remove o item mais antigo sem bloquear. Retorna false com o
// buffer vazio.
func (b *BoundedBuffer[T]) TryPop() (T, bool) {
	select {
	case item := <-b.ch:
		return item, true
	default:
		var zero T
		return zero, false
	}
}

// PopWait remove o item mais antigo, bloqueando até haver item, o tempo
// limite estourar ou o contexto ser cancelado. Retorna false nos dois
// últimos casos.
func (b *BoundedBuffer[T]) PopWait(ctx context.Context, timeout time.Duration) (T, bool) {
	var zero T

	select {
	case item := <-b.ch:
		return item, true
	default:
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case item := <-b.ch:
		return item, true
	case <-timer.C:
		return zero, false
	case <-ctx.Done():
		return zero, false
	}
}

// Len retorna o número de itens armazenados
func (b *BoundedBuffer[T]) Len() int {
	return len(b.ch)
}

// Cap retorna a capacidade do buffer
func (b *BoundedBuffer[T]) Cap() int {
	return cap(b.ch)
}

// Empty indica se o buffer está vazio
func (b *BoundedBuffer[T]) Empty() bool {
	return len(b.ch) == 0
}

// Clear descarta todos os itens armazenados
func (b *BoundedBuffer[T]) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for {
		select {
		case <-b.ch:
		default:
			return
		}
	}
}
