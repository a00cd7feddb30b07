// Package state mantém o estado compartilhado do caminhão. Cada campo é
// um atômico independente: leituras e escritas nunca bloqueiam e não há
// trava cobrindo mais de um campo, então um leitor pode observar uma
// combinação momentaneamente desatualizada entre campos.
package state

import "sync/atomic"

// VehicleState agrupa os flags de modo, falha e comando e as saídas dos
// atuadores. O valor zero está pronto para uso, com tudo desligado.
type VehicleState struct {
	automatico      atomic.Bool
	defeito         atomic.Bool
	alertaTemp      atomic.Bool
	falhaEletrica   atomic.Bool
	falhaHidraulica atomic.Bool

	cmdManual     atomic.Bool
	cmdAutomatico atomic.Bool
	cmdRearme     atomic.Bool
	cmdAcelera    atomic.Bool
	cmdDireita    atomic.Bool
	cmdEsquerda   atomic.Bool

	aceleracao atomic.Int32
	direcao    atomic.Int32
}

// Snapshot é uma cópia plana do estado, lida campo a campo
type Snapshot struct {
	Automatico        bool
	Defeito           bool
	AlertaTemperatura bool
	FalhaEletrica     bool
	FalhaHidraulica   bool
	CmdManual         bool
	CmdAutomatico     bool
	CmdRearme         bool
	CmdAcelera        bool
	CmdDireita        bool
	CmdEsquerda       bool
	Aceleracao        int
	Direcao           int
}

// New cria um estado zerado
func New() *VehicleState {
	return &VehicleState{}
}

// Automatico informa se o modo automático está ativo
func (s *VehicleState) Automatico() bool { return s.automatico.Load() }

// SetAutomatico liga ou desliga o modo automático
func (s *VehicleState) SetAutomatico(v bool) { s.automatico.Store(v) }

// Defeito informa se o caminhão está em defeito
func (s *VehicleState) Defeito() bool { return s.defeito.Load() }

// SetDefeito liga ou desliga o flag de defeito
func (s *VehicleState) SetDefeito(v bool) { s.defeito.Store(v) }

// AlertaTemperatura informa se há alerta de temperatura
func (s *VehicleState) AlertaTemperatura() bool { return s.alertaTemp.Load() }

// SetAlertaTemperatura liga ou desliga o alerta de temperatura
func (s *VehicleState) SetAlertaTemperatura(v bool) { s.alertaTemp.Store(v) }

// FalhaEletrica informa se há falha elétrica sinalizada
func (s *VehicleState) FalhaEletrica() bool { return s.falhaEletrica.Load() }

// SetFalhaEletrica liga ou desliga o flag de falha elétrica
func (s *VehicleState) SetFalhaEletrica(v bool) { s.falhaEletrica.Store(v) }

// FalhaHidraulica informa se há falha hidráulica sinalizada
func (s *VehicleState) FalhaHidraulica() bool { return s.falhaHidraulica.Load() }

// SetFalhaHidraulica liga ou desliga o flag de falha hidráulica
func (s *VehicleState) SetFalhaHidraulica(v bool) { s.falhaHidraulica.Store(v) }

// CmdManual informa se o pedido de modo manual está ativo
func (s *VehicleState) CmdManual() bool { return s.cmdManual.Load() }

// SetCmdManual liga ou desliga o pedido de modo manual
func (s *VehicleState) SetCmdManual(v bool) { s.cmdManual.Store(v) }

// CmdAutomatico informa se o pedido de modo automático está ativo
func (s *VehicleState) CmdAutomatico() bool { return s.cmdAutomatico.Load() }

// SetCmdAutomatico liga ou desliga o pedido de modo automático
func (s *VehicleState) SetCmdAutomatico(v bool) { s.cmdAutomatico.Store(v) }

// CmdRearme informa se há pedido de rearme pendente
func (s *VehicleState) CmdRearme() bool { return s.cmdRearme.Load() }

// SetCmdRearme liga ou desliga o pedido de rearme
func (s *VehicleState) SetCmdRearme(v bool) { s.cmdRearme.Store(v) }

// CmdAcelera informa se o acelerador manual está pressionado
func (s *VehicleState) CmdAcelera() bool { return s.cmdAcelera.Load() }

// SetCmdAcelera liga ou desliga o acelerador manual
func (s *VehicleState) SetCmdAcelera(v bool) { s.cmdAcelera.Store(v) }

// CmdDireita informa se o volante manual está virado para a direita
func (s *VehicleState) CmdDireita() bool { return s.cmdDireita.Load() }

// SetCmdDireita liga ou desliga o volante para a direita
func (s *VehicleState) SetCmdDireita(v bool) { s.cmdDireita.Store(v) }

// CmdEsquerda informa se o volante manual está virado para a esquerda
func (s *VehicleState) CmdEsquerda() bool { return s.cmdEsquerda.Load() }

// SetCmdEsquerda liga ou desliga o volante para a esquerda
func (s *VehicleState) SetCmdEsquerda(v bool) { s.cmdEsquerda.Store(v) }

// Aceleracao retorna a última saída de aceleração publicada
func (s *VehicleState) Aceleracao() int { return int(s.aceleracao.Load()) }

// SetAceleracao grava a saída de aceleração
func (s *VehicleState) SetAceleracao(v int) { s.aceleracao.Store(int32(v)) }

// Direcao retorna a última saída de direção publicada
func (s *VehicleState) Direcao() int { return int(s.direcao.Load()) }

// SetDirecao grava a saída de direção
func (s *VehicleState) SetDirecao(v int) { s.direcao.Store(int32(v)) }

// Rearm aplica o efeito do comando de rearme: marca o pedido e limpa o
// defeito retido
func (s *VehicleState) Rearm() {
	s.cmdRearme.Store(true)
	s.defeito.Store(false)
}

// Reset zera todos os campos
func (s *VehicleState) Reset() {
	s.automatico.Store(false)
	s.defeito.Store(false)
	s.alertaTemp.Store(false)
	s.falhaEletrica.Store(false)
	s.falhaHidraulica.Store(false)
	s.cmdManual.Store(false)
	s.cmdAutomatico.Store(false)
	s.cmdRearme.Store(false)
	s.cmdAcelera.Store(false)
	s.cmdDireita.Store(false)
	s.cmdEsquerda.Store(false)
	s.aceleracao.Store(0)
	s.direcao.Store(0)
}

// Snapshot lê todos os campos, um a um, e devolve uma cópia plana
func (s *VehicleState) Snapshot() Snapshot {
	return Snapshot{
		Automatico:        s.automatico.Load(),
		Defeito:           s.defeito.Load(),
		AlertaTemperatura: s.alertaTemp.Load(),
		FalhaEletrica:     s.falhaEletrica.Load(),
		FalhaHidraulica:   s.falhaHidraulica.Load(),
		CmdManual:         s.cmdManual.Load(),
		CmdAutomatico:     s.cmdAutomatico.Load(),
		CmdRearme:         s.cmdRearme.Load(),
		CmdAcelera:        s.cmdAcelera.Load(),
		CmdDireita:        s.cmdDireita.Load(),
		CmdEsquerda:       s.cmdEsquerda.Load(),
		Aceleracao:        int(s.aceleracao.Load()),
		Direcao:           int(s.direcao.Load()),
	}
}
