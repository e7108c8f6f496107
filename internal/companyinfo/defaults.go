package companyinfo

// Built-in corpus used when no YAML file is configured. Kept short on
// purpose; deployments ship their own file with the full catalog of answers.
var defaultSections = []Section{
	{
		Title: "Sobre Kavak",
		Body: "Kavak es una plataforma mexicana de compra y venta de autos seminuevos. " +
			"Todos los vehículos pasan por una inspección de 240 puntos antes de publicarse " +
			"y se entregan con garantía y con la documentación en regla.",
	},
	{
		Title: "Garantía y periodo de prueba",
		Body: "Todos los autos incluyen una garantía de tres meses, ampliable hasta un año, " +
			"y un periodo de prueba de siete días o 300 kilómetros. Si el auto no te convence, " +
			"lo devuelves y te reembolsamos.",
	},
	{
		Title: "Financiamiento",
		Body: "Ofrecemos planes de financiamiento a 36, 48, 60 y 72 meses con un enganche " +
			"desde el 20 por ciento del valor del auto. La solicitud se hace en línea y la " +
			"respuesta tarda menos de dos minutos.",
	},
	{
		Title: "Sucursales y cobertura",
		Body: "Tenemos sucursales y centros de inspección en Ciudad de México, Estado de " +
			"México, Guadalajara, Monterrey, Puebla, Querétaro y Cuernavaca, además de " +
			"entrega a domicilio en la mayor parte del país.",
	},
	{
		Title: "Proceso de compra",
		Body: "Eliges tu auto en el sitio, apartas con un pago inicial, agendas la entrega " +
			"o recolección y firmas el contrato digitalmente. El trámite del cambio de " +
			"propietario lo gestionamos nosotros.",
	},
	{
		Title: "Venta de tu auto",
		Body: "Para vender tu auto agendas una inspección gratuita, recibes una oferta en " +
			"el momento y, si la aceptas, el pago se realiza por transferencia el mismo día.",
	},
}
