// Package nav decide as saídas de aceleração e direção do caminhão. Em
// modo automático um controlador P de rumo e PI de velocidade levam o
// caminhão ao setpoint; em manual os comandos do operador ajustam as
// saídas em rampas; em defeito a aceleração é cortada.
package nav

import (
	"math"

	"caminhao_go/internal/models"
	"caminhao_go/pkg/utils"
)

// Ganhos e limites do controlador
const (
	kpAng = 1.1 // proporcional do rumo
	kpV   = 1.0 // proporcional da velocidade
	kiV   = 0.12
	// Período de controle em segundos, usado na integração
	controlPeriodS = 0.1

	integratorLimit = 200.0
	outputLimit     = 100.0
	steerLimit      = 180

	maxAutoSpeed     = 80.0
	speedGain        = 0.4
	minTrackDistance = 1.0

	manualAccelStep = 6
	manualDecayStep = 3
	manualSteerStep = 5

	bumplessFactor = 0.1

	defaultSetpointX = 500.0
	defaultSetpointY = 500.0
)

// Controller guarda o estado do laço de controle entre ciclos. As saídas
// persistem até o próximo cálculo; o integrador só corre em automático.
type Controller struct {
	setpointX float64
	setpointY float64

	integrator float64
	enabled    bool

	outAccel int
	outDir   int

	estSpeed float64
	last     models.SensorSample
	haveLast bool
	fresh    bool // amostra ainda não consumida por um ciclo de controle
}

// NewController cria o controlador com o setpoint padrão
func NewController() *Controller {
	return &Controller{
		setpointX: defaultSetpointX,
		setpointY: defaultSetpointY,
	}
}

// SetSetpoint troca o destino atual
func (c *Controller) SetSetpoint(x, y float64) {
	c.setpointX = x
	c.setpointY = y
}

// Setpoint retorna o destino atual
func (c *Controller) Setpoint() (float64, float64) {
	return c.setpointX, c.setpointY
}

// Outputs retorna as saídas atuais de aceleração e direção
func (c *Controller) Outputs() (accel, dir int) {
	return c.outAccel, c.outDir
}

// Observe registra uma amostra nova. A velocidade estimada vem do
// deslocamento entre amostras consecutivas; intervalos inválidos mantêm
// a estimativa anterior.
func (c *Controller) Observe(sample models.SensorSample) {
	if c.haveLast {
		dt := float64(sample.Timestamp-c.last.Timestamp) / 1000.0
		if dt > 0.0001 {
			dx := float64(sample.PosX - c.last.PosX)
			dy := float64(sample.PosY - c.last.PosY)
			c.estSpeed = math.Hypot(dx, dy) / dt
		}
	}
	c.last = sample
	c.haveLast = true
	c.fresh = true
}

// ApplyFault corta a aceleração. A direção, o integrador e o estado de
// habilitação ficam como estão.
func (c *Controller) ApplyFault() {
	c.outAccel = 0
	c.fresh = false
}

// ApplyManual aplica os comandos do operador em rampas. O setpoint
// acompanha a posição atual para que a volta ao automático parta de onde
// o caminhão está.
func (c *Controller) ApplyManual(acelera, direita, esquerda bool) {
	c.enabled = false
	c.fresh = false
	if c.haveLast {
		c.setpointX = float64(c.last.PosX)
		c.setpointY = float64(c.last.PosY)
	}

	if acelera {
		c.outAccel = utils.ClampInt(c.outAccel+manualAccelStep, -outputLimit, outputLimit)
	} else {
		c.outAccel = utils.ClampInt(c.outAccel-manualDecayStep, -outputLimit, outputLimit)
	}

	if direita {
		c.outDir = utils.ClampInt(c.outDir-manualSteerStep, -steerLimit, steerLimit)
	}
	if esquerda {
		c.outDir = utils.ClampInt(c.outDir+manualSteerStep, -steerLimit, steerLimit)
	}
}

// ApplyAutomatic corre um ciclo do controlador sobre a amostra mais
// recente. Na primeira passada após manual o integrador é recarregado da
// saída vigente, para a troca de modo não dar solavanco; sem amostra
// nova desde o último ciclo o cálculo é pulado e as saídas persistem.
func (c *Controller) ApplyAutomatic() {
	if !c.enabled {
		c.integrator = float64(c.outAccel) * bumplessFactor
		c.enabled = true
	}
	if !c.fresh {
		return
	}
	c.fresh = false

	dx := c.setpointX - float64(c.last.PosX)
	dy := c.setpointY - float64(c.last.PosY)
	dist := math.Hypot(dx, dy)

	// Perto demais do destino o rumo desejado vira o atual, zerando o
	// erro angular
	desiredAng := float64(c.last.Angulo)
	if dist > minTrackDistance {
		desiredAng = math.Atan2(dy, dx) * 180.0 / math.Pi
		if desiredAng < 0 {
			desiredAng += 360.0
		}
	}

	angErr := utils.WrapAngle180(desiredAng - float64(c.last.Angulo))
	c.outDir = int(utils.WrapAngle180(float64(c.last.Angulo) + math.Round(kpAng*angErr)))

	desiredSpeed := math.Min(maxAutoSpeed, dist*speedGain)
	errV := desiredSpeed - c.estSpeed
	c.integrator = utils.ClampFloat(c.integrator+errV*kiV*controlPeriodS, -integratorLimit, integratorLimit)
	out := math.Round(kpV*errV + c.integrator)
	c.outAccel = int(utils.ClampFloat(out, -outputLimit, outputLimit))
}
