package sensors

import (
	"math"
	"math/rand"

	"caminhao_go/internal/models"
	"caminhao_go/pkg/utils"
)

// Parâmetros físicos da simulação do caminhão
const (
	initialPosX = 100.0
	initialPosY = 100.0

	accelScale  = 0.6  // ganho da aceleração comandada
	headingGain = 1.8  // graus/s por unidade de direção
	maxTurnRate = 90.0 // limite da taxa de giro em graus/s

	minVelocity = -30.0
	maxVelocity = 160.0

	worldMin = 0.0
	worldMax = 1000.0

	baseTemp        = 70.0
	tempVelFactor   = 0.04
	tempAccelFactor = 0.02

	posNoiseSigma  = 0.9
	angNoiseSigma  = 1.2
	tempNoiseSigma = 1.2
)

// Dynamics integra a pose simulada do caminhão a partir dos comandos de
// aceleração e direção. As leituras saem com ruído gaussiano aplicado.
type Dynamics struct {
	rng *rand.Rand

	posX      float64
	posY      float64
	heading   float64
	velocity  float64
	lastAccel float64
}

// NewDynamics cria a simulação na pose inicial, com o gerador de ruído
// semeado
func NewDynamics(seed int64) *Dynamics {
	return &Dynamics{
		rng:  rand.New(rand.NewSource(seed)),
		posX: initialPosX,
		posY: initialPosY,
	}
}

// Step avança a física por dt segundos com os comandos atuais. O rumo
// gira em direção ao comando de direção, com taxa proporcional ao erro
// angular mais curto e presa ao limite.
func (d *Dynamics) Step(accelCmd, steerCmd int, dt float64) {
	accel := float64(accelCmd) * accelScale
	d.velocity += accel * dt
	d.velocity = utils.ClampFloat(d.velocity, minVelocity, maxVelocity)

	angErr := utils.WrapAngle180(float64(steerCmd) - d.heading)
	turnRate := utils.ClampFloat(headingGain*angErr, -maxTurnRate, maxTurnRate)
	d.heading = utils.Normalize360(d.heading + turnRate*dt)

	rad := d.heading * math.Pi / 180.0
	d.posX = utils.ClampFloat(d.posX+d.velocity*math.Cos(rad)*dt, worldMin, worldMax)
	d.posY = utils.ClampFloat(d.posY+d.velocity*math.Sin(rad)*dt, worldMin, worldMax)

	d.lastAccel = accel
}

// Sample gera a leitura inteira dos sensores na pose atual, com ruído
// gaussiano independente por canal. O ângulo sai preso à faixa 0..359.
func (d *Dynamics) Sample(nowMs int64) models.SensorSample {
	noisyAng := d.heading + d.rng.NormFloat64()*angNoiseSigma
	ang := utils.RoundToInt(math.Mod(noisyAng+360.0, 360.0))
	ang = utils.ClampInt(ang, 0, 359)

	temp := baseTemp +
		math.Abs(d.velocity)*tempVelFactor +
		math.Abs(d.lastAccel)*tempAccelFactor +
		d.rng.NormFloat64()*tempNoiseSigma

	return models.SensorSample{
		PosX:        utils.RoundToInt(d.posX + d.rng.NormFloat64()*posNoiseSigma),
		PosY:        utils.RoundToInt(d.posY + d.rng.NormFloat64()*posNoiseSigma),
		Angulo:      ang,
		Temperatura: utils.RoundToInt(temp),
		Timestamp:   nowMs,
	}
}

// PosX retorna a posição X real, sem ruído
func (d *Dynamics) PosX() float64 { return d.posX }

// PosY retorna a posição Y real, sem ruído
func (d *Dynamics) PosY() float64 { return d.posY }

// Heading retorna o rumo real em graus
func (d *Dynamics) Heading() float64 { return d.heading }

// Velocity retorna a velocidade real
func (d *Dynamics) Velocity() float64 { return d.velocity }
